package model

type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
)

type TeacherStatus string

const (
	TeacherActive   TeacherStatus = "Active"
	TeacherInactive TeacherStatus = "Inactive"
)

// Class is a named, sectioned grouping of students. Students and the
// teacher reference it by id only.
type Class struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"documentId,omitempty"`
	Name       string    `json:"name"`
	Section    string    `json:"section"`
	Students   []Student `json:"students,omitempty"`
}

type Student struct {
	ID         int64         `json:"id"`
	DocumentID string        `json:"documentId,omitempty"`
	Name       string        `json:"name"`
	Email      string        `json:"email,omitempty"`
	RollNumber string        `json:"rollNumber"`
	Phone      string        `json:"phone,omitempty"`
	Address    string        `json:"address,omitempty"`
	Status     StudentStatus `json:"studentStatus,omitempty"`
	Class      *Class        `json:"class,omitempty"`
}

type Teacher struct {
	ID          int64         `json:"id"`
	DocumentID  string        `json:"documentId,omitempty"`
	Name        string        `json:"name"`
	Email       string        `json:"email,omitempty"`
	Subject     string        `json:"subject,omitempty"`
	Phone       string        `json:"phone,omitempty"`
	JoiningDate string        `json:"joiningDate,omitempty"`
	Experience  string        `json:"experience,omitempty"`
	Status      TeacherStatus `json:"teacherStatus,omitempty"`
	Class       *Class        `json:"class,omitempty"`
}

// ExamResult keeps the backend's capitalised "Subject" attribute name.
type ExamResult struct {
	ID            int64    `json:"id"`
	DocumentID    string   `json:"documentId,omitempty"`
	Title         string   `json:"title"`
	Subject       string   `json:"Subject"`
	ExamDate      string   `json:"examDate"`
	TotalMarks    int      `json:"totalMarks"`
	ObtainedMarks int      `json:"obtainedMarks"`
	Student       *Student `json:"student,omitempty"`
	Class         *Class   `json:"class,omitempty"`
}
