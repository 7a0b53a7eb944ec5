package attendance

import (
	"context"
	"fmt"
	"time"

	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/internal/session"
	"school-portal-gateway/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Writer is the part of the backend client a batch needs.
type Writer interface {
	CreateAttendance(ctx context.Context, token string, in model.AttendanceInput) (*model.AttendanceRecord, error)
	Attendances(ctx context.Context, token string, q model.AttendanceQuery) ([]model.AttendanceRecord, error)
}

type Mark struct {
	StudentID int64                  `json:"student_id"`
	Status    model.AttendanceStatus `json:"status"`
}

type Policy string

const (
	// PolicyAppend writes every mark, even for students already marked that day.
	PolicyAppend       Policy = "append"
	PolicySkipExisting Policy = "skip_existing"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAppend, "":
		return PolicyAppend, nil
	case PolicySkipExisting:
		return PolicySkipExisting, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", s)
}

type Submitter struct {
	writer Writer
	policy Policy
	now    func() time.Time
	log    zerolog.Logger
}

func NewSubmitter(writer Writer, policy Policy) *Submitter {
	return &Submitter{
		writer: writer,
		policy: policy,
		now:    time.Now,
		log:    logger.Component("attendance"),
	}
}

// Submit writes one attendance record per student, sequentially and in the
// order given. A failed write does not stop the batch and nothing is undone;
// the report says which students succeeded, failed or were skipped. When ctx
// is cancelled the remaining marks are reported as failed without a request.
func (s *Submitter) Submit(ctx context.Context, sess *session.Session, date string, marks []Mark) (*model.BatchReport, error) {
	if err := sess.Require(model.RoleAdmin, model.RoleTeacher); err != nil {
		return nil, err
	}
	if date == "" {
		return nil, errors.Required("date")
	}
	if _, ok := model.ParseDate(date); !ok || len(date) != len(model.DateLayout) {
		return nil, errors.ValidationError{Field: "date", Value: date, Message: "must be YYYY-MM-DD"}
	}
	marks, err := dedupe(marks)
	if err != nil {
		return nil, err
	}

	report := &model.BatchReport{
		ID:          uuid.NewString(),
		Date:        date,
		SubmittedBy: sess.UserID(),
		Items:       make([]model.BatchItem, 0, len(marks)),
		CreatedAt:   s.now().UTC(),
	}

	log := s.log.With().
		Str("batch_id", report.ID).
		Str("date", date).
		Int("marks", len(marks)).
		Logger()

	existing := map[int64]bool{}
	if s.policy == PolicySkipExisting {
		existing, err = s.markedOn(ctx, sess.Token, date)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load existing attendance")
			return nil, err
		}
	}

	for _, mark := range marks {
		item := model.BatchItem{StudentID: mark.StudentID, Status: mark.Status}

		switch {
		case existing[mark.StudentID]:
			item.Outcome = model.OutcomeSkipped
		case ctx.Err() != nil:
			item.Outcome = model.OutcomeFailed
			item.Error = ctx.Err().Error()
		default:
			_, err := s.writer.CreateAttendance(ctx, sess.Token, model.AttendanceInput{
				Date:    date,
				Status:  mark.Status,
				Student: mark.StudentID,
			})
			if err != nil {
				log.Warn().Err(err).Int64("student_id", mark.StudentID).Msg("Attendance write failed")
				item.Outcome = model.OutcomeFailed
				item.Error = err.Error()
			} else {
				item.Outcome = model.OutcomeSucceeded
			}
		}

		report.Items = append(report.Items, item)
	}

	log.Info().
		Int("succeeded", len(report.Succeeded())).
		Int("failed", len(report.Failed())).
		Int("skipped", len(report.Skipped())).
		Msg("Attendance batch submitted")

	return report, nil
}

func (s *Submitter) markedOn(ctx context.Context, token, date string) (map[int64]bool, error) {
	records, err := s.writer.Attendances(ctx, token, model.AttendanceQuery{Date: date})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance for %s: %w", date, err)
	}
	marked := make(map[int64]bool, len(records))
	for _, record := range records {
		if id := record.StudentID(); id != 0 {
			marked[id] = true
		}
	}
	return marked, nil
}

// dedupe keeps one mark per student: the last status wins, the position is
// where the student first appeared.
func dedupe(marks []Mark) ([]Mark, error) {
	if len(marks) == 0 {
		return nil, errors.Required("marks")
	}
	out := make([]Mark, 0, len(marks))
	index := make(map[int64]int, len(marks))
	for _, mark := range marks {
		if mark.StudentID == 0 {
			return nil, errors.Required("student_id")
		}
		if !mark.Status.Valid() {
			return nil, errors.ValidationError{
				Field:   "status",
				Value:   mark.Status,
				Message: "must be present, absent or leave",
			}
		}
		if i, ok := index[mark.StudentID]; ok {
			out[i].Status = mark.Status
			continue
		}
		index[mark.StudentID] = len(out)
		out = append(out, mark)
	}
	return out, nil
}

// MarksForRoster marks every student of a roster present unless overrides
// says otherwise. Override ids that are not on the roster are ignored.
func MarksForRoster(students []model.Student, overrides map[int64]model.AttendanceStatus) []Mark {
	marks := make([]Mark, 0, len(students))
	for _, student := range students {
		status := model.StatusPresent
		if override, ok := overrides[student.ID]; ok {
			status = override
		}
		marks = append(marks, Mark{StudentID: student.ID, Status: status})
	}
	return marks
}

// CheckRoster rejects marks for students that are not on the roster.
func CheckRoster(marks []Mark, students []model.Student) error {
	onRoster := make(map[int64]bool, len(students))
	for _, student := range students {
		onRoster[student.ID] = true
	}
	for _, mark := range marks {
		if !onRoster[mark.StudentID] {
			return fmt.Errorf("student %d is not in your class: %w", mark.StudentID, errors.ErrForbidden)
		}
	}
	return nil
}
