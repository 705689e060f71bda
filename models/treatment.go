package models

import "time"

// Treatment is the clinical record attached 1:1 to an appointment. It is only
// written through the diagnose workflow.
type Treatment struct {
	ID            int        `json:"id" db:"id"`
	AppointmentID int        `json:"appointment_id" db:"appointment_id"`
	DoctorID      int        `json:"doctor_id" db:"doctor_id"`
	PatientID     int        `json:"patient_id" db:"patient_id"`
	Diagnosis     string     `json:"diagnosis" db:"diagnosis"`
	TreatmentPlan string     `json:"treatment_plan" db:"treatment_plan"`
	Prescription  string     `json:"prescription" db:"prescription"`
	Notes         string     `json:"notes" db:"notes"`
	NextVisitDate *time.Time `json:"next_visit_date" db:"next_visit_date"`
	TreatmentDate time.Time  `json:"treatment_date" db:"treatment_date"`
}

// TreatmentRecord is a treatment joined with patient name and appointment date.
type TreatmentRecord struct {
	Treatment
	PatientName     string     `json:"patient_name"`
	AppointmentDate *time.Time `json:"appointment_date"`
}

// DiagnoseRequest is the doctor's diagnosis form.
type DiagnoseRequest struct {
	Diagnosis     string `json:"diagnosis"`
	TreatmentPlan string `json:"treatment_plan"`
	Prescription  string `json:"prescription"`
	Notes         string `json:"notes"`
	NextVisitDate string `json:"next_visit_date,omitempty"` // YYYY-MM-DD
}
