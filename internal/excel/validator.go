package excel

import (
	"context"
	"fmt"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/pkg/errors"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every row and stops at the first bad one.
func (v *Validator) Validate(ctx context.Context, rows []ResultRow) error {
	if len(rows) == 0 {
		return errors.Required("rows")
	}

	for _, row := range rows {
		if err := v.validateRow(row.Input); err != nil {
			return fmt.Errorf("row %d: %w", row.Line, err)
		}
	}

	return nil
}

func (v *Validator) validateRow(in model.ExamResultInput) error {
	switch {
	case in.Title == "":
		return errors.Required("title")
	case in.Subject == "":
		return errors.Required("subject")
	case in.ExamDate == "":
		return errors.Required("exam_date")
	case in.TotalMarks == 0:
		return errors.Required("total_marks")
	case in.Student == 0:
		return errors.Required("student_id")
	}

	if _, ok := model.ParseDate(in.ExamDate); !ok {
		return errors.ValidationError{
			Field:   "exam_date",
			Value:   in.ExamDate,
			Message: "must be YYYY-MM-DD",
		}
	}

	if in.TotalMarks < 0 {
		return errors.ValidationError{
			Field:   "total_marks",
			Value:   in.TotalMarks,
			Message: "must be positive",
		}
	}

	if in.ObtainedMarks != nil && (*in.ObtainedMarks < 0 || *in.ObtainedMarks > in.TotalMarks) {
		return errors.ValidationError{
			Field:   "obtained_marks",
			Value:   *in.ObtainedMarks,
			Message: fmt.Sprintf("must be between 0 and %d", in.TotalMarks),
		}
	}

	return nil
}
