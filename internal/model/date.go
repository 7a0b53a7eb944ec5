package model

import (
	"time"

	"school-portal-gateway/pkg/errors"
)

const DateLayout = "2006-01-02"

// ParseDate accepts "YYYY-MM-DD" and anything that starts with it,
// such as an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	if len(s) < len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateRange is inclusive on both ends. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from != "" {
		t, ok := ParseDate(from)
		if !ok {
			return r, errors.ValidationError{Field: "from", Value: from, Message: "must be YYYY-MM-DD"}
		}
		r.From = t
	}
	if to != "" {
		t, ok := ParseDate(to)
		if !ok {
			return r, errors.ValidationError{Field: "to", Value: to, Message: "must be YYYY-MM-DD"}
		}
		r.To = t
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, errors.ErrInvalidDateRange
	}
	return r, nil
}

func (r DateRange) Open() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func (r DateRange) Closed() bool {
	return !r.From.IsZero() && !r.To.IsZero()
}

// Contains reports whether date falls inside the range. Unparseable dates
// are only accepted by an open range.
func (r DateRange) Contains(date string) bool {
	if r.Open() {
		return true
	}
	t, ok := ParseDate(date)
	if !ok {
		return false
	}
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

func (r DateRange) FromString() string {
	if r.From.IsZero() {
		return ""
	}
	return r.From.Format(DateLayout)
}

func (r DateRange) ToString() string {
	if r.To.IsZero() {
		return ""
	}
	return r.To.Format(DateLayout)
}
