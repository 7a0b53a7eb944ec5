package dashboard

import (
	"context"
	"fmt"

	"school-portal-gateway/internal/attendance"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"

	"github.com/rs/zerolog"
)

const recentResultsLimit = 5

// Reader is the read side of the backend client.
type Reader interface {
	Students(ctx context.Context, token string) ([]model.Student, error)
	Teachers(ctx context.Context, token string) ([]model.Teacher, error)
	Classes(ctx context.Context, token string) ([]model.Class, error)
	Attendances(ctx context.Context, token string, q model.AttendanceQuery) ([]model.AttendanceRecord, error)
	ExamResults(ctx context.Context, token string, q model.ExamResultQuery) ([]model.ExamResult, error)
	TeacherByUser(ctx context.Context, token string, userID int64) (*model.Teacher, error)
	StudentByUser(ctx context.Context, token string, userID int64) (*model.Student, error)
}

// Service assembles the per-role screens. Remote calls run one after
// another and the first failure aborts the screen.
type Service struct {
	reader Reader
	log    zerolog.Logger
}

func NewService(reader Reader) *Service {
	return &Service{
		reader: reader,
		log:    logger.Component("dashboard"),
	}
}

type AdminStats struct {
	Students   int                       `json:"total_students"`
	Teachers   int                       `json:"total_teachers"`
	Classes    int                       `json:"total_classes"`
	Attendance attendance.Summary        `json:"attendance"`
	ByClass    []attendance.ClassSummary `json:"attendance_by_class"`
}

func (s *Service) AdminStats(ctx context.Context, sess *session.Session) (*AdminStats, error) {
	if err := sess.Require(model.RoleAdmin); err != nil {
		return nil, err
	}

	students, err := s.reader.Students(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	teachers, err := s.reader.Teachers(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load teachers: %w", err)
	}
	classes, err := s.reader.Classes(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}
	records, err := s.reader.Attendances(ctx, sess.Token, model.AttendanceQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	return &AdminStats{
		Students:   len(students),
		Teachers:   len(teachers),
		Classes:    len(classes),
		Attendance: attendance.Summarize(records, model.DateRange{}),
		ByClass:    attendance.SummarizeByClass(attendance.GroupByClass(students), records, model.DateRange{}),
	}, nil
}

// Roster returns the students an attendance sheet covers, grouped by class:
// every student for an admin, the teacher's own class for a teacher.
func (s *Service) Roster(ctx context.Context, sess *session.Session) (*attendance.Grouping, error) {
	if err := sess.Require(model.RoleAdmin, model.RoleTeacher); err != nil {
		return nil, err
	}

	if _, ok := sess.Role().(model.AdminRole); ok {
		students, err := s.reader.Students(ctx, sess.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to load students: %w", err)
		}
		return attendance.GroupByClass(students), nil
	}

	teacher, err := s.reader.TeacherByUser(ctx, sess.Token, sess.UserID())
	if err != nil {
		return nil, err
	}
	return attendance.GroupByClass(classStudents(teacher.Class)), nil
}

// classStudents returns the class's students with their class set, since a
// populated class.students list does not carry the back reference.
func classStudents(class *model.Class) []model.Student {
	if class == nil {
		return []model.Student{}
	}
	ref := &model.Class{ID: class.ID, DocumentID: class.DocumentID, Name: class.Name, Section: class.Section}
	students := make([]model.Student, len(class.Students))
	for i, st := range class.Students {
		st.Class = ref
		students[i] = st
	}
	return students
}

type TeacherOverview struct {
	Teacher        *model.Teacher              `json:"teacher"`
	ClassKey       string                      `json:"class_key"`
	Students       []model.Student             `json:"students"`
	Attendance     attendance.Summary          `json:"attendance"`
	ByStudent      []attendance.StudentSummary `json:"attendance_by_student"`
	Results        []model.ExamResult          `json:"exam_results"`
	PendingResults int                         `json:"pending_results"`
}

func (s *Service) TeacherOverview(ctx context.Context, sess *session.Session, r model.DateRange) (*TeacherOverview, error) {
	if err := sess.Require(model.RoleTeacher); err != nil {
		return nil, err
	}

	teacher, err := s.reader.TeacherByUser(ctx, sess.Token, sess.UserID())
	if err != nil {
		return nil, err
	}

	overview := &TeacherOverview{
		Teacher:   teacher,
		Students:  classStudents(teacher.Class),
		Results:   []model.ExamResult{},
		ByStudent: []attendance.StudentSummary{},
	}
	if teacher.Class == nil {
		overview.Attendance = attendance.Summarize(nil, r)
		return overview, nil
	}
	overview.ClassKey = attendance.ClassKey(teacher.Class)

	records, err := s.reader.Attendances(ctx, sess.Token, model.AttendanceQuery{
		From:    r.FromString(),
		To:      r.ToString(),
		ClassID: teacher.Class.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	overview.Attendance = attendance.Summarize(records, r)
	overview.ByStudent = attendance.SummarizeByStudent(records, r)

	results, err := s.reader.ExamResults(ctx, sess.Token, model.ExamResultQuery{
		ClassID: teacher.Class.ID,
		Sort:    "examDate:desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load exam results: %w", err)
	}
	overview.Results = results
	overview.PendingResults = PendingResults(results)

	return overview, nil
}

type StudentOverview struct {
	Student       *model.Student     `json:"student"`
	Attendance    attendance.Summary `json:"attendance"`
	RecentResults []model.ExamResult `json:"recent_results"`
}

func (s *Service) StudentOverview(ctx context.Context, sess *session.Session) (*StudentOverview, error) {
	if err := sess.Require(model.RoleStudent); err != nil {
		return nil, err
	}

	student, err := s.reader.StudentByUser(ctx, sess.Token, sess.UserID())
	if err != nil {
		return nil, err
	}

	records, err := s.reader.Attendances(ctx, sess.Token, model.AttendanceQuery{StudentID: student.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	results, err := s.reader.ExamResults(ctx, sess.Token, model.ExamResultQuery{
		StudentID: student.ID,
		Sort:      "examDate:desc",
		Limit:     recentResultsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load exam results: %w", err)
	}

	return &StudentOverview{
		Student:       student,
		Attendance:    attendance.Summarize(records, model.DateRange{}),
		RecentResults: RecentResults(results, recentResultsLimit),
	}, nil
}

type StudentAttendance struct {
	Records []model.AttendanceRecord `json:"records"`
	Summary attendance.Summary       `json:"summary"`
}

func (s *Service) StudentAttendance(ctx context.Context, sess *session.Session, r model.DateRange) (*StudentAttendance, error) {
	if err := sess.Require(model.RoleStudent); err != nil {
		return nil, err
	}

	student, err := s.reader.StudentByUser(ctx, sess.Token, sess.UserID())
	if err != nil {
		return nil, err
	}

	records, err := s.reader.Attendances(ctx, sess.Token, model.AttendanceQuery{
		From:      r.FromString(),
		To:        r.ToString(),
		StudentID: student.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	kept := make([]model.AttendanceRecord, 0, len(records))
	for _, record := range records {
		if r.Contains(record.Date) {
			kept = append(kept, record)
		}
	}

	return &StudentAttendance{
		Records: kept,
		Summary: attendance.Summarize(kept, model.DateRange{}),
	}, nil
}

type StudentResults struct {
	Results  []model.ExamResult `json:"results"`
	Subjects []string           `json:"subjects"`
}

func (s *Service) StudentResults(ctx context.Context, sess *session.Session, subject string) (*StudentResults, error) {
	if err := sess.Require(model.RoleStudent); err != nil {
		return nil, err
	}

	student, err := s.reader.StudentByUser(ctx, sess.Token, sess.UserID())
	if err != nil {
		return nil, err
	}

	results, err := s.reader.ExamResults(ctx, sess.Token, model.ExamResultQuery{StudentID: student.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load exam results: %w", err)
	}

	return &StudentResults{
		Results:  FilterResults(results, subject),
		Subjects: Subjects(results),
	}, nil
}

// ReportScope returns the class a report is limited to: zero for an admin,
// the teacher's own class for a teacher. ok is false for a teacher without
// a class, whose reports are always empty.
func (s *Service) ReportScope(ctx context.Context, sess *session.Session) (classID int64, ok bool, err error) {
	if err := sess.Require(model.RoleAdmin, model.RoleTeacher); err != nil {
		return 0, false, err
	}
	if _, isTeacher := sess.Role().(model.TeacherRole); !isTeacher {
		return 0, true, nil
	}
	teacher, err := s.reader.TeacherByUser(ctx, sess.Token, sess.UserID())
	if err != nil {
		return 0, false, err
	}
	if teacher.Class == nil {
		return 0, false, nil
	}
	return teacher.Class.ID, true, nil
}

// AttendanceRows loads the attendance records a report covers.
func (s *Service) AttendanceRows(ctx context.Context, sess *session.Session, r model.DateRange) ([]model.AttendanceRecord, error) {
	classID, ok, err := s.ReportScope(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.AttendanceRecord{}, nil
	}

	records, err := s.reader.Attendances(ctx, sess.Token, model.AttendanceQuery{
		From:    r.FromString(),
		To:      r.ToString(),
		ClassID: classID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	s.log.Debug().Int("records", len(records)).Msg("Attendance rows loaded")
	return records, nil
}
