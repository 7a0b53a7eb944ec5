package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"
	apperrors "school-portal-gateway/pkg/errors"
)

type fakeReader struct {
	students    []model.Student
	teachers    []model.Teacher
	classes     []model.Class
	records     []model.AttendanceRecord
	results     []model.ExamResult
	teacher     *model.Teacher
	student     *model.Student
	attQueries  []model.AttendanceQuery
	examQueries []model.ExamResultQuery
	err         error
}

func (f *fakeReader) Students(context.Context, string) ([]model.Student, error) {
	return f.students, f.err
}

func (f *fakeReader) Teachers(context.Context, string) ([]model.Teacher, error) {
	return f.teachers, nil
}

func (f *fakeReader) Classes(context.Context, string) ([]model.Class, error) {
	return f.classes, nil
}

func (f *fakeReader) Attendances(_ context.Context, _ string, q model.AttendanceQuery) ([]model.AttendanceRecord, error) {
	f.attQueries = append(f.attQueries, q)
	return f.records, nil
}

func (f *fakeReader) ExamResults(_ context.Context, _ string, q model.ExamResultQuery) ([]model.ExamResult, error) {
	f.examQueries = append(f.examQueries, q)
	return f.results, nil
}

func (f *fakeReader) TeacherByUser(context.Context, string, int64) (*model.Teacher, error) {
	if f.teacher == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.teacher, nil
}

func (f *fakeReader) StudentByUser(context.Context, string, int64) (*model.Student, error) {
	if f.student == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.student, nil
}

func sessionFor(t *testing.T, role string) *session.Session {
	t.Helper()
	sess, err := session.New("sid", "tok", model.User{ID: 5, Role: &model.RoleInfo{Name: role}}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return sess
}

func present(id int64, date string) model.AttendanceRecord {
	return model.AttendanceRecord{Date: date, Status: model.StatusPresent, Student: &model.Student{ID: id}}
}

func absent(id int64, date string) model.AttendanceRecord {
	return model.AttendanceRecord{Date: date, Status: model.StatusAbsent, Student: &model.Student{ID: id}}
}

func TestAdminStats(t *testing.T) {
	reader := &fakeReader{
		students: []model.Student{{ID: 1}, {ID: 2}},
		teachers: []model.Teacher{{ID: 1}},
		classes:  []model.Class{{ID: 1}, {ID: 2}, {ID: 3}},
		records:  []model.AttendanceRecord{present(1, "2024-05-01"), absent(2, "2024-05-01")},
	}

	stats, err := NewService(reader).AdminStats(context.Background(), sessionFor(t, "admin"))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Students)
	assert.Equal(t, 1, stats.Teachers)
	assert.Equal(t, 3, stats.Classes)
	assert.Equal(t, "50.0%", stats.Attendance.RateString())
	require.Len(t, stats.ByClass, 1)
	assert.Equal(t, " - ", stats.ByClass[0].Key)
	assert.Equal(t, 2, stats.ByClass[0].Summary.Total)
}

func TestAdminStatsEmptyAttendance(t *testing.T) {
	stats, err := NewService(&fakeReader{}).AdminStats(context.Background(), sessionFor(t, "admin"))
	require.NoError(t, err)
	assert.Equal(t, "0.0%", stats.Attendance.RateString())
}

func TestAdminStatsPropagatesErrors(t *testing.T) {
	_, err := NewService(&fakeReader{err: apperrors.ErrTransport}).AdminStats(context.Background(), sessionFor(t, "admin"))
	assert.ErrorIs(t, err, apperrors.ErrTransport)

	_, err = NewService(&fakeReader{}).AdminStats(context.Background(), sessionFor(t, "teacher"))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func teacherWithClass() *model.Teacher {
	return &model.Teacher{
		ID: 9, Name: "T",
		Class: &model.Class{ID: 4, Name: "5", Section: "A", Students: []model.Student{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Bo"}}},
	}
}

func TestRoster(t *testing.T) {
	reader := &fakeReader{
		students: []model.Student{
			{ID: 1, Class: &model.Class{Name: "5", Section: "A"}},
			{ID: 2, Class: &model.Class{Name: "6", Section: "B"}},
		},
		teacher: teacherWithClass(),
	}
	svc := NewService(reader)

	g, err := svc.Roster(context.Background(), sessionFor(t, "admin"))
	require.NoError(t, err)
	assert.Equal(t, []string{"5 - A", "6 - B"}, g.Keys())

	g, err = svc.Roster(context.Background(), sessionFor(t, "teacher"))
	require.NoError(t, err)
	assert.Equal(t, []string{"5 - A"}, g.Keys())
	assert.Len(t, g.Students("5 - A"), 2)
}

func TestTeacherOverview(t *testing.T) {
	reader := &fakeReader{
		teacher: teacherWithClass(),
		records: []model.AttendanceRecord{present(1, "2024-05-01"), absent(2, "2024-05-01"), present(2, "2024-05-02")},
		results: []model.ExamResult{{Title: "Quiz", ObtainedMarks: 0}, {Title: "Final", ObtainedMarks: 70}},
	}

	overview, err := NewService(reader).TeacherOverview(context.Background(), sessionFor(t, "teacher"), model.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "5 - A", overview.ClassKey)
	assert.Len(t, overview.Students, 2)
	assert.Equal(t, "5 - A", overview.Students[0].Class.Name+" - "+overview.Students[0].Class.Section)
	assert.Equal(t, "66.7%", overview.Attendance.RateString())
	assert.Len(t, overview.ByStudent, 2)
	assert.Equal(t, 1, overview.PendingResults)
	assert.Equal(t, int64(4), reader.attQueries[0].ClassID)
	assert.Equal(t, int64(4), reader.examQueries[0].ClassID)
}

func TestTeacherOverviewWithoutClass(t *testing.T) {
	reader := &fakeReader{teacher: &model.Teacher{ID: 9}}
	overview, err := NewService(reader).TeacherOverview(context.Background(), sessionFor(t, "teacher"), model.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, overview.Students)
	assert.Equal(t, "0.0%", overview.Attendance.RateString())
	assert.Empty(t, reader.attQueries)
}

func TestStudentOverview(t *testing.T) {
	reader := &fakeReader{
		student: &model.Student{ID: 3},
		records: []model.AttendanceRecord{present(3, "2024-05-01"), present(3, "2024-05-02")},
		results: []model.ExamResult{
			{Title: "a", ExamDate: "2024-01-01"},
			{Title: "b", ExamDate: "2024-03-01"},
			{Title: "c", ExamDate: "2024-02-01"},
		},
	}

	overview, err := NewService(reader).StudentOverview(context.Background(), sessionFor(t, "student"))
	require.NoError(t, err)
	assert.Equal(t, "100.0%", overview.Attendance.RateString())
	assert.Equal(t, "b", overview.RecentResults[0].Title)
	assert.Equal(t, int64(3), reader.attQueries[0].StudentID)
	assert.Equal(t, 5, reader.examQueries[0].Limit)
}

func TestStudentOverviewWithoutRecord(t *testing.T) {
	_, err := NewService(&fakeReader{}).StudentOverview(context.Background(), sessionFor(t, "student"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStudentAttendanceRange(t *testing.T) {
	reader := &fakeReader{
		student: &model.Student{ID: 3},
		records: []model.AttendanceRecord{present(3, "2024-04-30"), absent(3, "2024-05-01"), present(3, "2024-05-02")},
	}
	rng, err := model.ParseDateRange("2024-05-01", "")
	require.NoError(t, err)

	out, err := NewService(reader).StudentAttendance(context.Background(), sessionFor(t, "student"), rng)
	require.NoError(t, err)
	assert.Len(t, out.Records, 2)
	assert.Equal(t, "50.0%", out.Summary.RateString())
}

func TestStudentResults(t *testing.T) {
	reader := &fakeReader{
		student: &model.Student{ID: 3},
		results: []model.ExamResult{{Subject: "Math"}, {Subject: "Physics"}, {Subject: "Math"}},
	}
	out, err := NewService(reader).StudentResults(context.Background(), sessionFor(t, "student"), "Math")
	require.NoError(t, err)
	assert.Len(t, out.Results, 2)
	assert.Equal(t, []string{"Math", "Physics"}, out.Subjects)
}

func TestAttendanceRowsScopesTeachers(t *testing.T) {
	reader := &fakeReader{teacher: teacherWithClass()}
	svc := NewService(reader)

	_, err := svc.AttendanceRows(context.Background(), sessionFor(t, "teacher"), model.DateRange{})
	require.NoError(t, err)
	_, err = svc.AttendanceRows(context.Background(), sessionFor(t, "admin"), model.DateRange{})
	require.NoError(t, err)

	require.Len(t, reader.attQueries, 2)
	assert.Equal(t, int64(4), reader.attQueries[0].ClassID)
	assert.Zero(t, reader.attQueries[1].ClassID)
}

func TestFilterStudents(t *testing.T) {
	students := []model.Student{
		{Name: "Ada Lovelace", RollNumber: "R-01", Class: &model.Class{Name: "5"}},
		{Name: "Bo", RollNumber: "R-02", Class: &model.Class{Name: "6"}},
		{Name: "Cy", RollNumber: "X-9"},
	}

	assert.Len(t, FilterStudents(students, StudentFilter{}), 3)
	assert.Len(t, FilterStudents(students, StudentFilter{Search: "r-0"}), 2)
	assert.Len(t, FilterStudents(students, StudentFilter{Search: "ADA"}), 1)
	assert.Len(t, FilterStudents(students, StudentFilter{ClassName: "6"}), 1)
	assert.Len(t, FilterStudents(students, StudentFilter{ClassName: All}), 3)
}

func TestFilterTeachers(t *testing.T) {
	teachers := []model.Teacher{
		{Name: "Ann", Email: "ann@s.test", Subject: "Mathematics"},
		{Name: "Ben", Email: "ben@s.test", Subject: "Physics"},
	}
	assert.Len(t, FilterTeachers(teachers, TeacherFilter{Subject: "math"}), 1)
	assert.Len(t, FilterTeachers(teachers, TeacherFilter{Search: "ben@"}), 1)
	assert.Len(t, FilterTeachers(teachers, TeacherFilter{Subject: All}), 2)
}

func TestFilterUsers(t *testing.T) {
	users := []model.User{
		{Username: "ann", Email: "a@s", Role: &model.RoleInfo{Name: "Teacher"}},
		{Username: "ben", Email: "b@s", Role: &model.RoleInfo{Name: "Student"}},
		{Username: "cy", Email: "c@s"},
	}
	assert.Len(t, FilterUsers(users, UserFilter{Role: "teacher"}), 1)
	assert.Len(t, FilterUsers(users, UserFilter{Search: "B@"}), 1)
	assert.Len(t, FilterUsers(users, UserFilter{Role: All}), 3)
}

func TestRecentResultsDoesNotMutateInput(t *testing.T) {
	results := []model.ExamResult{{ExamDate: "2024-01-01"}, {ExamDate: "2024-02-01"}}
	recent := RecentResults(results, 1)
	require.Len(t, recent, 1)
	assert.Equal(t, "2024-02-01", recent[0].ExamDate)
	assert.Equal(t, "2024-01-01", results[0].ExamDate)
}
