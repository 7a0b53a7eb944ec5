package forms

import (
	"context"
	"errors"
	"strings"
	"sync"

	apperrors "school-portal-gateway/pkg/errors"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Form tracks one submission: Idle -> Submitting -> Success | Failed.
// A success clears the values; a failure keeps them and records the notice.
// There is no retry; calling Submit again starts a new attempt.
type Form[T any] struct {
	mu     sync.Mutex
	state  State
	values T
	notice string
}

func NewForm[T any](values T) *Form[T] {
	return &Form[T]{state: StateIdle, values: values}
}

// Submit validates the values and passes them to send. It refuses to start
// while a previous submission is still running.
func (f *Form[T]) Submit(ctx context.Context, send func(ctx context.Context, values T) error) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return apperrors.ErrFormInFlight
	}
	if err := Check(f.values); err != nil {
		f.state = StateFailed
		f.notice = RequiredNotice
		f.mu.Unlock()
		return err
	}
	f.state = StateSubmitting
	f.notice = ""
	values := f.values
	f.mu.Unlock()

	err := send(ctx, values)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		f.notice = NoticeFor(err)
		return err
	}
	var zero T
	f.state = StateSuccess
	f.values = zero
	return nil
}

func (f *Form[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *Form[T]) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// NoticeFor turns a submission error into the text shown to the user.
func NoticeFor(err error) string {
	var vErr apperrors.ValidationError
	if errors.As(err, &vErr) {
		if strings.Contains(vErr.Message, "required") {
			return RequiredNotice
		}
		return vErr.Error()
	}
	var partial *apperrors.PartialFailureError
	if errors.As(err, &partial) {
		return "Saved only partially: " + partial.Error()
	}
	return err.Error()
}
