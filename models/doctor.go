package models

// Doctor represents the doctors table (1:1 with a doctor user).
type Doctor struct {
	ID             int    `json:"id" db:"id"`
	UserID         int    `json:"user_id" db:"user_id"`
	DepartmentID   int    `json:"department_id" db:"department_id"`
	LicenseNumber  string `json:"license_number" db:"license_number"`
	Specialization string `json:"specialization" db:"specialization"`
	Qualification  string `json:"qualification" db:"qualification"`
	Experience     int    `json:"experience" db:"experience"`
	Gender         string `json:"gender" db:"gender"`
	// Status mirrors users.is_active: "active" or "inactive". The two fields
	// are only ever written together.
	Status  string `json:"status" db:"status"`
	AdminID int    `json:"admin_id" db:"admin_id"`
}

// DoctorRecord is a doctor row joined with its account and department.
type DoctorRecord struct {
	Doctor
	Name           string `json:"name"`
	Username       string `json:"username"`
	DepartmentName string `json:"department_name"`
}

// AddDoctorRequest is the admin add-doctor form.
type AddDoctorRequest struct {
	Name           string `json:"name"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Gender         string `json:"gender"`
	DepartmentID   int    `json:"department_id"`
	LicenseNumber  string `json:"license_number"`
	Specialization string `json:"specialization"`
	Qualification  string `json:"qualification"`
	Experience     int    `json:"experience"`
}

// UpdateDoctorRequest is the admin doctor-update form. Empty fields keep the
// stored value.
type UpdateDoctorRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Qualification  string `json:"qualification"`
	Experience     *int   `json:"experience"`
	DepartmentID   *int   `json:"department_id"`
}

// DoctorProfileUpdateRequest is the doctor's own profile form.
type DoctorProfileUpdateRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Qualification  string `json:"qualification"`
	Experience     *int   `json:"experience"`
	Gender         string `json:"gender"`
}

// DoctorStats aggregates a doctor's profile counters.
type DoctorStats struct {
	TotalAppointments     int `json:"total_appointments"`
	CompletedAppointments int `json:"completed_appointments"`
	TotalPatients         int `json:"total_patients"`
}
