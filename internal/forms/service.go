package forms

import (
	"context"
	"fmt"
	"time"

	"school-portal-gateway/internal/backend"
	"school-portal-gateway/internal/excel"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"
	"school-portal-gateway/pkg/errors"

	"github.com/rs/zerolog"
)

// Backend is the write side of the backend client.
type Backend interface {
	CreateUser(ctx context.Context, token string, in model.UserInput) (*model.User, error)
	ListRoles(ctx context.Context, token string) ([]model.RoleInfo, error)
	Create(ctx context.Context, token, collection string, data, out interface{}) error
	Update(ctx context.Context, token, collection, documentID string, data, out interface{}) error
	Delete(ctx context.Context, token, collection, documentID string) error
}

type Service struct {
	backend Backend
	sheet   *excel.ResultSheet
	now     func() time.Time
	log     zerolog.Logger
}

func NewService(b Backend) *Service {
	return &Service{
		backend: b,
		sheet:   excel.NewResultSheet(),
		now:     time.Now,
		log:     logger.Component("forms"),
	}
}

// CreateUser creates the account and then, for teacher and student roles,
// the linked profile record. The two writes are not atomic: when the second
// fails the account stays and a PartialFailureError names it.
func (s *Service) CreateUser(ctx context.Context, sess *session.Session, values UserForm) (*model.User, error) {
	if err := sess.Require(model.RoleAdmin); err != nil {
		return nil, err
	}

	var created *model.User
	err := NewForm(values).Submit(ctx, func(ctx context.Context, v UserForm) error {
		role, err := s.findRole(ctx, sess.Token, v.RoleID)
		if err != nil {
			return err
		}

		user, err := s.backend.CreateUser(ctx, sess.Token, v.input())
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		created = user

		var collection string
		switch role.Kind() {
		case model.RoleTeacher:
			collection = backend.CollectionTeachers
		case model.RoleStudent:
			collection = backend.CollectionStudents
		default:
			return nil
		}

		profile := model.LinkedProfileInput{Name: v.Username, Email: v.Email, User: user.ID}
		if err := s.backend.Create(ctx, sess.Token, collection, profile, nil); err != nil {
			s.log.Error().Err(err).
				Int64("user_id", user.ID).
				Str("collection", collection).
				Msg("Linked profile creation failed, user left in place")
			return errors.NewPartialFailure("create "+collection+" profile", user.ID, err)
		}
		return nil
	})
	if err != nil {
		return created, err
	}

	s.log.Info().Int64("user_id", created.ID).Msg("User created")
	return created, nil
}

func (s *Service) findRole(ctx context.Context, token string, id int64) (*model.RoleInfo, error) {
	roles, err := s.backend.ListRoles(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	for i := range roles {
		if roles[i].ID == id {
			return &roles[i], nil
		}
	}
	return nil, errors.ValidationError{Field: "role", Value: id, Message: "unknown role"}
}

func (s *Service) CreateStudent(ctx context.Context, sess *session.Session, values StudentForm) (*model.Student, error) {
	if err := sess.Require(model.RoleAdmin); err != nil {
		return nil, err
	}
	var student model.Student
	err := NewForm(values).Submit(ctx, func(ctx context.Context, v StudentForm) error {
		return s.backend.Create(ctx, sess.Token, backend.CollectionStudents, v.input(), &student)
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *Service) UpdateStudent(ctx context.Context, sess *session.Session, documentID string, values StudentForm) (*model.Student, error) {
	if err := sess.Require(model.RoleAdmin); err != nil {
		return nil, err
	}
	if documentID == "" {
		return nil, errors.Required("documentId")
	}
	var student model.Student
	err := NewForm(values).Submit(ctx, func(ctx context.Context, v StudentForm) error {
		return s.backend.Update(ctx, sess.Token, backend.CollectionStudents, documentID, v.input(), &student)
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *Service) CreateTeacher(ctx context.Context, sess *session.Session, values TeacherForm) (*model.Teacher, error) {
	if err := sess.Require(model.RoleAdmin); err != nil {
		return nil, err
	}
	var teacher model.Teacher
	err := NewForm(values).Submit(ctx, func(ctx context.Context, v TeacherForm) error {
		return s.backend.Create(ctx, sess.Token, backend.CollectionTeachers, v.input(s.now()), &teacher)
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (s *Service) UpdateTeacher(ctx context.Context, sess *session.Session, documentID string, values TeacherForm) (*model.Teacher, error) {
	if err := sess.Require(model.RoleAdmin); err != nil {
		return nil, err
	}
	if documentID == "" {
		return nil, errors.Required("documentId")
	}
	var teacher model.Teacher
	err := NewForm(values).Submit(ctx, func(ctx context.Context, v TeacherForm) error {
		return s.backend.Update(ctx, sess.Token, backend.CollectionTeachers, documentID, v.input(s.now()), &teacher)
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Delete removes a student or teacher record by document id.
func (s *Service) Delete(ctx context.Context, sess *session.Session, collection, documentID string) error {
	if err := sess.Require(model.RoleAdmin); err != nil {
		return err
	}
	if documentID == "" {
		return errors.Required("documentId")
	}
	if err := s.backend.Delete(ctx, sess.Token, collection, documentID); err != nil {
		return err
	}
	s.log.Info().Str("collection", collection).Str("document_id", documentID).Msg("Record deleted")
	return nil
}

func (s *Service) CreateExamResult(ctx context.Context, sess *session.Session, values ExamResultForm) (*model.ExamResult, error) {
	if err := sess.Require(model.RoleAdmin, model.RoleTeacher); err != nil {
		return nil, err
	}
	var result model.ExamResult
	err := NewForm(values).Submit(ctx, func(ctx context.Context, v ExamResultForm) error {
		return s.backend.Create(ctx, sess.Token, backend.CollectionExamResults, v.input(), &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type ImportItem struct {
	Line      int                `json:"line"`
	Title     string             `json:"title"`
	StudentID int64              `json:"student_id"`
	Outcome   model.BatchOutcome `json:"outcome"`
	Error     string             `json:"error,omitempty"`
}

type ImportReport struct {
	Items []ImportItem `json:"items"`
}

func (r *ImportReport) Count(outcome model.BatchOutcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

// ImportExamResults reads a results workbook and writes one exam result per
// row, in sheet order. A bad sheet is rejected before anything is written;
// a failed write is reported and the import continues. classID, when not
// zero, fills rows that leave class_id empty.
func (s *Service) ImportExamResults(ctx context.Context, sess *session.Session, data []byte, classID int64) (*ImportReport, error) {
	if err := sess.Require(model.RoleAdmin, model.RoleTeacher); err != nil {
		return nil, err
	}

	rows, err := s.sheet.Read(ctx, data)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Items: make([]ImportItem, 0, len(rows))}
	for _, row := range rows {
		in := row.Input
		if in.Class == 0 {
			in.Class = classID
		}
		item := ImportItem{Line: row.Line, Title: in.Title, StudentID: in.Student}

		if ctx.Err() != nil {
			item.Outcome = model.OutcomeFailed
			item.Error = ctx.Err().Error()
		} else if err := s.backend.Create(ctx, sess.Token, backend.CollectionExamResults, in, nil); err != nil {
			item.Outcome = model.OutcomeFailed
			item.Error = err.Error()
		} else {
			item.Outcome = model.OutcomeSucceeded
		}
		report.Items = append(report.Items, item)
	}

	s.log.Info().
		Int("rows", len(rows)).
		Int("failed", report.Count(model.OutcomeFailed)).
		Msg("Exam results imported")

	return report, nil
}
