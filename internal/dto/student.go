package dto

import "github.com/noah-isme/student-records-api/internal/models"

// StudentPayload is the trimmed, typed view of a raw student request body
// before rule checks run. Optional fields are nil when absent or blank.
type StudentPayload struct {
	ID             int64   `json:"id" validate:"required,gt=0"`
	FirstName      string  `json:"first_name" validate:"required,max=100"`
	LastName       string  `json:"last_name" validate:"required,max=100"`
	Email          string  `json:"email" validate:"required,max=100,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Gender         *string `json:"gender" validate:"omitempty,max=10,oneof=Male Female Other"`
	Address        *string `json:"address" validate:"omitempty,max=1000"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,isodate"`
	EnrollmentDate *string `json:"enrollment_date" validate:"omitempty,isodate"`
}

// StudentFields is the normalized field set produced by validation.
// ID is only set for updates.
type StudentFields struct {
	ID             int64        `json:"id,omitempty"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Email          string       `json:"email"`
	Phone          *string      `json:"phone"`
	Gender         *string      `json:"gender"`
	Address        *string      `json:"address"`
	DateOfBirth    *models.Date `json:"date_of_birth"`
	EnrollmentDate *models.Date `json:"enrollment_date"`
}

// ApplyTo copies every mutable field onto student, replacing previous values.
func (f StudentFields) ApplyTo(student *models.Student) {
	student.FirstName = f.FirstName
	student.LastName = f.LastName
	student.Email = f.Email
	student.Phone = f.Phone
	student.Gender = f.Gender
	student.Address = f.Address
	student.DateOfBirth = f.DateOfBirth
	student.EnrollmentDate = f.EnrollmentDate
}

// StudentList is the collection payload returned by list and search.
type StudentList struct {
	Count    int              `json:"count"`
	Total    int              `json:"total"`
	Students []models.Student `json:"students"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// DeletedStudent acknowledges a removed student.
type DeletedStudent struct {
	ID int64 `json:"id"`
}
