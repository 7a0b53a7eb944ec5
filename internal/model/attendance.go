package model

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLeave   AttendanceStatus = "leave"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave:
		return true
	}
	return false
}

// AttendanceRecord is appended once per student per day; it is never
// updated in place.
type AttendanceRecord struct {
	ID         int64            `json:"id"`
	DocumentID string           `json:"documentId,omitempty"`
	Date       string           `json:"date"`
	Status     AttendanceStatus `json:"attendanceStatus"`
	Student    *Student         `json:"student,omitempty"`
}

// StudentID returns 0 when the student relation was not populated.
func (r AttendanceRecord) StudentID() int64 {
	if r.Student == nil {
		return 0
	}
	return r.Student.ID
}

// AttendanceQuery narrows an attendance fetch. Zero fields are not sent.
type AttendanceQuery struct {
	From      string
	To        string
	Date      string
	StudentID int64
	ClassID   int64
}

type BatchOutcome string

const (
	OutcomeSucceeded BatchOutcome = "SUCCEEDED"
	OutcomeFailed    BatchOutcome = "FAILED"
	OutcomeSkipped   BatchOutcome = "SKIPPED"
)

type BatchItem struct {
	StudentID int64            `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	Outcome   BatchOutcome     `json:"outcome"`
	Error     string           `json:"error,omitempty"`
}

// BatchReport lists what happened to every mark of one attendance submission.
type BatchReport struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	SubmittedBy int64       `json:"submitted_by"`
	Items       []BatchItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (b *BatchReport) ids(outcome BatchOutcome) []int64 {
	ids := []int64{}
	for _, item := range b.Items {
		if item.Outcome == outcome {
			ids = append(ids, item.StudentID)
		}
	}
	return ids
}

func (b *BatchReport) Succeeded() []int64 { return b.ids(OutcomeSucceeded) }
func (b *BatchReport) Failed() []int64    { return b.ids(OutcomeFailed) }
func (b *BatchReport) Skipped() []int64   { return b.ids(OutcomeSkipped) }

func (b *BatchReport) HasFailures() bool {
	for _, item := range b.Items {
		if item.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}
