package models

// AdminDashboard aggregates the landing-page figures for an admin.
type AdminDashboard struct {
	TotalDoctors       int                 `json:"total_doctors"`
	TotalPatients      int                 `json:"total_patients"`
	TotalAppointments  int                 `json:"total_appointments"`
	RecentDoctors      []DoctorRecord      `json:"recent_doctors"`
	RecentPatients     []PatientRecord     `json:"recent_patients"`
	RecentAppointments []AppointmentRecord `json:"recent_appointments"`
	Departments        []Department        `json:"departments"`
}

// DoctorDashboard aggregates the landing-page figures for a doctor.
type DoctorDashboard struct {
	TodaysAppointments   int             `json:"todays_appointments"`
	PendingConsultations int             `json:"pending_consultations"`
	UpcomingAppointments int             `json:"upcoming_appointments"`
	AssignedPatients     []PatientRecord `json:"assigned_patients"`
	Chart                []DailyCount    `json:"chart"`
}

// DepartmentCount is one row of the per-department doctor headcount report.
type DepartmentCount struct {
	Name        string `json:"name"`
	DoctorCount int    `json:"doctor_count"`
}

// AdminReport is the full reporting view, computed per request.
type AdminReport struct {
	TotalDoctors          int                 `json:"total_doctors"`
	ActiveDoctors         int                 `json:"active_doctors"`
	InactiveDoctors       int                 `json:"inactive_doctors"`
	TotalPatients         int                 `json:"total_patients"`
	ActivePatients        int                 `json:"active_patients"`
	InactivePatients      int                 `json:"inactive_patients"`
	TotalAppointments     int                 `json:"total_appointments"`
	BookedAppointments    int                 `json:"booked_appointments"`
	CompletedAppointments int                 `json:"completed_appointments"`
	CancelledAppointments int                 `json:"cancelled_appointments"`
	DepartmentCounts      []DepartmentCount   `json:"department_counts"`
	RecentDoctors         []DoctorRecord      `json:"recent_doctors"`
	RecentPatients        []PatientRecord     `json:"recent_patients"`
	RecentAppointments    []AppointmentRecord `json:"recent_appointments"`
}

// SearchResults wraps the admin free-text search response. Only the slice
// matching Type is populated.
type SearchResults struct {
	Type         string              `json:"type"`
	Term         string              `json:"term"`
	Doctors      []DoctorRecord      `json:"doctors,omitempty"`
	Patients     []PatientRecord     `json:"patients,omitempty"`
	Appointments []AppointmentRecord `json:"appointments,omitempty"`
}
