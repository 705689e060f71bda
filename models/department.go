package models

import "time"

// Department groups doctors. Name is unique.
type Department struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DepartmentStats is a department plus its doctor headcount.
type DepartmentStats struct {
	Department
	DoctorCount int `json:"doctor_count"`
}

// DepartmentRequest is the add/update department form.
type DepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
