package models

import "time"

// DoctorAvailability is a per-day availability window. At most one row exists
// per (doctor, date); rows are flipped to unavailable, never deleted.
type DoctorAvailability struct {
	ID        int       `json:"id" db:"id"`
	DoctorID  int       `json:"doctor_id" db:"doctor_id"`
	Date      time.Time `json:"date" db:"available_date"`
	StartTime string    `json:"start_time" db:"start_time"` // HH:MM
	EndTime   string    `json:"end_time" db:"end_time"`     // HH:MM
	Available bool      `json:"available" db:"available"`
	Notes     string    `json:"notes" db:"notes"`
}

// AvailabilityDay is one slot of the rolling 7-day view. Availability is nil
// when no row exists for the date, which is distinct from an explicit
// unavailable row.
type AvailabilityDay struct {
	DayIndex     int                 `json:"day_index"`
	Date         time.Time           `json:"date"`
	DayName      string              `json:"day_name"`
	Availability *DoctorAvailability `json:"availability"`
}

// AvailabilityEntry is one day of the availability form.
type AvailabilityEntry struct {
	DayIndex  int    `json:"day_index"` // 0..6 from today
	Available bool   `json:"available"`
	StartTime string `json:"start_time,omitempty"` // HH:MM
	EndTime   string `json:"end_time,omitempty"`   // HH:MM
}

// SetAvailabilityRequest is the 7-day availability form.
type SetAvailabilityRequest struct {
	Days []AvailabilityEntry `json:"days"`
}
