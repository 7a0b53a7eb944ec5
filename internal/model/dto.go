package model

import "time"

// Write payloads. Relations are sent as numeric ids.

type StudentInput struct {
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	RollNumber string        `json:"rollNumber,omitempty"`
	Address    string        `json:"address"`
	Phone      string        `json:"phone"`
	Status     StudentStatus `json:"studentStatus,omitempty"`
	Class      int64         `json:"class,omitempty"`
}

type TeacherInput struct {
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Subject     string        `json:"subject"`
	Phone       string        `json:"phone"`
	JoiningDate string        `json:"joiningDate"`
	Status      TeacherStatus `json:"teacherStatus"`
	Experience  string        `json:"experience"`
	Class       int64         `json:"class,omitempty"`
}

// LinkedProfileInput creates the teacher or student record that belongs to
// a freshly created account.
type LinkedProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	User  int64  `json:"user"`
}

type AttendanceInput struct {
	Date    string           `json:"date"`
	Status  AttendanceStatus `json:"attendanceStatus"`
	Student int64            `json:"student"`
}

type ExamResultInput struct {
	Title         string `json:"title"`
	Subject       string `json:"Subject"`
	ExamDate      string `json:"examDate"`
	TotalMarks    int    `json:"totalMarks"`
	ObtainedMarks *int   `json:"obtainedMarks,omitempty"`
	Student       int64  `json:"student"`
	Class         int64  `json:"class,omitempty"`
}

// UserInput is posted as-is to /users, without the {data: ...} envelope.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     int64  `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type ExamResultQuery struct {
	ClassID   int64
	StudentID int64
	Sort      string
	Limit     int
}

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

type ExportStatus string

const (
	ExportQueued  ExportStatus = "QUEUED"
	ExportRunning ExportStatus = "RUNNING"
	ExportDone    ExportStatus = "DONE"
	ExportEmpty   ExportStatus = "EMPTY"
	ExportFailed  ExportStatus = "FAILED"
)

// ExportJob is both the queue message and the ledger row of an
// asynchronous attendance report.
type ExportJob struct {
	ID           string       `json:"id"`
	Format       ExportFormat `json:"format"`
	From         string       `json:"from,omitempty"`
	To           string       `json:"to,omitempty"`
	RequestedBy  int64        `json:"requested_by"`
	SessionID    string       `json:"session_id,omitempty"`
	ClassID      int64        `json:"class_id,omitempty"`
	Status       ExportStatus `json:"status"`
	ObjectKey    string       `json:"object_key,omitempty"`
	RowCount     int          `json:"row_count"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
