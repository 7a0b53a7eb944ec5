package forms

import (
	"time"

	"school-portal-gateway/internal/model"
)

// Form values as the screens submit them. Only presence is checked.

type UserForm struct {
	Username string `json:"username" validate:"notblank"`
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
	RoleID   int64  `json:"role" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (f UserForm) input() model.UserInput {
	return model.UserInput{
		Username: f.Username,
		Email:    f.Email,
		Password: f.Password,
		Role:     f.RoleID,
		Phone:    f.Phone,
		Address:  f.Address,
	}
}

type StudentForm struct {
	Name       string              `json:"name" validate:"notblank"`
	Email      string              `json:"email" validate:"notblank"`
	RollNumber string              `json:"rollNumber" validate:"notblank"`
	ClassID    int64               `json:"classId" validate:"required"`
	Phone      string              `json:"phone"`
	Address    string              `json:"address"`
	Status     model.StudentStatus `json:"studentStatus"`
}

func (f StudentForm) input() model.StudentInput {
	status := f.Status
	if status == "" {
		status = model.StudentActive
	}
	return model.StudentInput{
		Name:       f.Name,
		Email:      f.Email,
		RollNumber: f.RollNumber,
		Address:    f.Address,
		Phone:      f.Phone,
		Status:     status,
		Class:      f.ClassID,
	}
}

type TeacherForm struct {
	Name        string              `json:"name" validate:"notblank"`
	Email       string              `json:"email" validate:"notblank"`
	Subject     string              `json:"subject" validate:"notblank"`
	ClassID     int64               `json:"classId" validate:"required"`
	Phone       string              `json:"phone"`
	JoiningDate string              `json:"joiningDate"`
	Experience  string              `json:"experience"`
	Status      model.TeacherStatus `json:"teacherStatus"`
}

func (f TeacherForm) input(now time.Time) model.TeacherInput {
	in := model.TeacherInput{
		Name:        f.Name,
		Email:       f.Email,
		Subject:     f.Subject,
		Phone:       f.Phone,
		JoiningDate: f.JoiningDate,
		Status:      f.Status,
		Experience:  f.Experience,
		Class:       f.ClassID,
	}
	if in.JoiningDate == "" {
		in.JoiningDate = now.Format(model.DateLayout)
	}
	if in.Status == "" {
		in.Status = model.TeacherActive
	}
	if in.Experience == "" {
		in.Experience = "0 years"
	}
	return in
}

type ExamResultForm struct {
	Title         string `json:"title" validate:"notblank"`
	Subject       string `json:"subject" validate:"notblank"`
	ExamDate      string `json:"examDate" validate:"notblank"`
	TotalMarks    int    `json:"totalMarks" validate:"required"`
	ObtainedMarks *int   `json:"obtainedMarks"`
	StudentID     int64  `json:"studentId" validate:"required"`
	ClassID       int64  `json:"classId" validate:"required"`
}

func (f ExamResultForm) input() model.ExamResultInput {
	return model.ExamResultInput{
		Title:         f.Title,
		Subject:       f.Subject,
		ExamDate:      f.ExamDate,
		TotalMarks:    f.TotalMarks,
		ObtainedMarks: f.ObtainedMarks,
		Student:       f.StudentID,
		Class:         f.ClassID,
	}
}
