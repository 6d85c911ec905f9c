package models

import "time"

// Gender values accepted for a student.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Pagination bounds for list and search queries.
const (
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// Student represents a learner registered in the institution.
type Student struct {
	ID             int64      `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email"`
	Phone          *string    `db:"phone" json:"phone"`
	DateOfBirth    *Date      `db:"date_of_birth" json:"date_of_birth"`
	Gender         *string    `db:"gender" json:"gender"`
	Address        *string    `db:"address" json:"address"`
	EnrollmentDate *Date      `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates search and pagination parameters for listing students.
type StudentFilter struct {
	Search  string
	Page    int
	PerPage int
}

// Normalize clamps the pagination window into its allowed range.
func (f StudentFilter) Normalize() StudentFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

// Offset returns the number of rows skipped before the current page.
func (f StudentFilter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.PerPage
}
