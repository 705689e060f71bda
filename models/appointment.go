package models

import "time"

// Appointment links a patient and a doctor on a date/time slot. Times of day
// are stored as "HH:MM" strings, matching the form inputs.
type Appointment struct {
	ID                int               `json:"id" db:"id"`
	AppointmentNumber string            `json:"appointment_number" db:"appointment_number"`
	PatientID         int               `json:"patient_id" db:"patient_id"`
	DoctorID          int               `json:"doctor_id" db:"doctor_id"`
	Date              time.Time         `json:"date" db:"appoint_date"`
	Time              string            `json:"time" db:"appoint_time"`
	Status            AppointmentStatus `json:"status" db:"status"`
	Reason            string            `json:"reason" db:"reason"`
	AdminID           int               `json:"admin_id" db:"admin_id"`
}

// AppointmentRecord is an appointment joined with patient and doctor names for
// the directory views.
type AppointmentRecord struct {
	Appointment
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
}

// DoctorAppointment is an appointment enriched with patient demographics for
// the doctor's worklist.
type DoctorAppointment struct {
	Appointment
	PatientName       string `json:"patient_name"`
	PatientGender     string `json:"patient_gender"`
	PatientAge        int    `json:"patient_age"`
	PatientBloodGroup string `json:"patient_blood_group"`
	PatientAddress    string `json:"patient_address"`
}

// AppointmentFilter narrows directory queries. Zero values mean no filter.
type AppointmentFilter struct {
	Status    AppointmentStatus
	DoctorID  int
	PatientID int
	// DateFrom/DateTo bound appoint_date inclusively when non-zero.
	DateFrom time.Time
	DateTo   time.Time
}

// BookAppointmentRequest is the patient booking form. No conflict detection is
// performed on the requested slot.
type BookAppointmentRequest struct {
	DoctorID int    `json:"doctor_id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM
	Reason   string `json:"reason"`
}

// DailyCount is one point of the doctor dashboard chart.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}
