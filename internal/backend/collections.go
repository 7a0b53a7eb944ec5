package backend

import (
	"context"
	"fmt"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/pkg/errors"
)

// listLimit is sent with every collection read so the CMS's default page
// size does not truncate rosters and reports.
const listLimit = 100

func (c *Client) Students(ctx context.Context, token string) ([]model.Student, error) {
	return list[model.Student](ctx, c, token, CollectionStudents, NewQuery().Populate("*").Limit(listLimit))
}

func (c *Client) Teachers(ctx context.Context, token string) ([]model.Teacher, error) {
	return list[model.Teacher](ctx, c, token, CollectionTeachers, NewQuery().Populate("class").Limit(listLimit))
}

func (c *Client) Classes(ctx context.Context, token string) ([]model.Class, error) {
	return list[model.Class](ctx, c, token, CollectionClasses, NewQuery().Populate("*").Limit(listLimit))
}

func (c *Client) Attendances(ctx context.Context, token string, q model.AttendanceQuery) ([]model.AttendanceRecord, error) {
	query := NewQuery().Populate("student").Limit(listLimit)
	switch {
	case q.From != "" && q.To != "":
		query.Between("date", q.From, q.To)
	case q.Date != "":
		query.Eq(q.Date, "date")
	}
	if q.StudentID != 0 {
		query.EqInt(q.StudentID, "student", "id")
	}
	if q.ClassID != 0 {
		query.EqInt(q.ClassID, "student", "class", "id")
	}
	return list[model.AttendanceRecord](ctx, c, token, CollectionAttendances, query)
}

func (c *Client) ExamResults(ctx context.Context, token string, q model.ExamResultQuery) ([]model.ExamResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = listLimit
	}
	query := NewQuery().Populate("student.class").Sort(q.Sort).Limit(limit)
	if q.ClassID != 0 {
		query.EqInt(q.ClassID, "class", "id")
	}
	if q.StudentID != 0 {
		query.EqInt(q.StudentID, "student", "id")
	}
	return list[model.ExamResult](ctx, c, token, CollectionExamResults, query)
}

// TeacherByUser returns the teacher record linked to an account, with its
// class and the class's students.
func (c *Client) TeacherByUser(ctx context.Context, token string, userID int64) (*model.Teacher, error) {
	query := NewQuery().Populate("class.students").EqInt(userID, "user", "id")
	teachers, err := list[model.Teacher](ctx, c, token, CollectionTeachers, query)
	if err != nil {
		return nil, err
	}
	if len(teachers) == 0 {
		return nil, fmt.Errorf("%w: no teacher record for user %d", errors.ErrNotFound, userID)
	}
	return &teachers[0], nil
}

func (c *Client) StudentByUser(ctx context.Context, token string, userID int64) (*model.Student, error) {
	query := NewQuery().Populate("class").EqInt(userID, "user", "id")
	students, err := list[model.Student](ctx, c, token, CollectionStudents, query)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, fmt.Errorf("%w: no student record for user %d", errors.ErrNotFound, userID)
	}
	return &students[0], nil
}

func (c *Client) CreateAttendance(ctx context.Context, token string, in model.AttendanceInput) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	if err := c.Create(ctx, token, CollectionAttendances, in, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
