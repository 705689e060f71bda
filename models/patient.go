package models

import "time"

// Patient represents the patients table (1:1 with a patient user).
type Patient struct {
	ID         int        `json:"id" db:"id"`
	UserID     int        `json:"user_id" db:"user_id"`
	Gender     string     `json:"gender" db:"gender"`
	DOB        *time.Time `json:"dob" db:"dob"`
	BloodGroup string     `json:"blood_group" db:"blood_group"`
	Address    string     `json:"address" db:"address"`
	IsActive   bool       `json:"is_active" db:"is_active"`
}

// PatientRecord is a patient row joined with its account, as listed in the
// admin and doctor directories.
type PatientRecord struct {
	Patient
	Name     string `json:"name"`
	Username string `json:"username"`
	Age      int    `json:"age"`
}

// DoctorPatient is a directory entry for a doctor's own patients.
type DoctorPatient struct {
	PatientRecord
	AppointmentCount int        `json:"appointment_count"`
	LastVisit        *time.Time `json:"last_visit"`
}

// CalculateAge returns full years between dob and today, or 0 when unknown.
func CalculateAge(dob *time.Time) int {
	if dob == nil {
		return 0
	}
	now := time.Now()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
