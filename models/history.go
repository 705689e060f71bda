package models

import "time"

// MedicalHistory is the 1:1 clinical log per patient. ChronicConditions and
// CurrentMedications are append-only dated text logs, not structured records.
type MedicalHistory struct {
	ID                 int       `json:"id" db:"id"`
	PatientID          int       `json:"patient_id" db:"patient_id"`
	Allergies          string    `json:"allergies" db:"allergies"`
	ChronicConditions  string    `json:"chronic_conditions" db:"chronic_conditions"`
	CurrentMedications string    `json:"current_medications" db:"current_medications"`
	PreviousSurgeries  string    `json:"previous_surgeries" db:"previous_surgeries"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// AppendEntry appends a "[YYYY-MM-DD] text" line to an existing log.
func AppendEntry(log, text string, when time.Time) string {
	entry := "[" + when.Format("2006-01-02") + "] " + text
	if log == "" {
		return entry
	}
	return log + "\n" + entry
}
