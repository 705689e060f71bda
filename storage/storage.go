package storage

import (
	"context"
	"time"

	"github.com/hmsdev/hospital-backend/models"
)

// Store is the persistence surface for the application. Handlers receive a
// request-scoped Store; all writes happen inside InTx so a failure rolls the
// whole unit of work back.
//
// Methods return models.ErrNotFound for stale ids and models.ErrDuplicate for
// unique-key collisions (username, license number, department name).
type Store interface {
	// InTx runs fn against a transaction-scoped Store. fn returning an error
	// rolls back; otherwise the transaction commits. Nested calls join the
	// outer transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdateUserName(ctx context.Context, id int, name string) error
	SetUserMFA(ctx context.Context, id int, enabled bool, secret string) error

	// Admin profiles
	CreateAdmin(ctx context.Context, userID int) (int, error)
	GetAdminByUserID(ctx context.Context, userID int) (*models.Admin, error)

	// Departments
	CreateDepartment(ctx context.Context, d *models.Department) error
	UpdateDepartment(ctx context.Context, id int, name, description string) error
	GetDepartment(ctx context.Context, id int) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListDepartmentStats(ctx context.Context) ([]models.DepartmentStats, error)

	// Doctors
	CreateDoctor(ctx context.Context, d *models.Doctor) error
	GetDoctorByID(ctx context.Context, id int) (*models.Doctor, error)
	GetDoctorByUserID(ctx context.Context, userID int) (*models.Doctor, error)
	ListDoctors(ctx context.Context) ([]models.DoctorRecord, error)
	RecentDoctors(ctx context.Context, limit int) ([]models.DoctorRecord, error)
	UpdateDoctor(ctx context.Context, d *models.Doctor) error
	// SetDoctorStatus writes doctors.status and users.is_active in lock-step.
	SetDoctorStatus(ctx context.Context, doctorID int, active bool) error
	SearchDoctors(ctx context.Context, term string) ([]models.DoctorRecord, error)
	DoctorStats(ctx context.Context, doctorID int) (*models.DoctorStats, error)
	CountDoctors(ctx context.Context) (total, active int, err error)

	// Patients
	CreatePatient(ctx context.Context, p *models.Patient) error
	GetPatientByID(ctx context.Context, id int) (*models.Patient, error)
	GetPatientByUserID(ctx context.Context, userID int) (*models.Patient, error)
	ListPatients(ctx context.Context) ([]models.PatientRecord, error)
	RecentPatients(ctx context.Context, limit int) ([]models.PatientRecord, error)
	// SetPatientActive writes patients.is_active and users.is_active in lock-step.
	SetPatientActive(ctx context.Context, patientID int, active bool) error
	SearchPatients(ctx context.Context, term string) ([]models.PatientRecord, error)
	ListDoctorPatients(ctx context.Context, doctorID int) ([]models.DoctorPatient, error)
	CountPatients(ctx context.Context) (total, active int, err error)

	// Appointments
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, id int) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.AppointmentRecord, error)
	ListDoctorAppointments(ctx context.Context, doctorID int, f models.AppointmentFilter) ([]models.DoctorAppointment, error)
	SetAppointmentStatus(ctx context.Context, id int, status models.AppointmentStatus) error
	CountAppointments(ctx context.Context, f models.AppointmentFilter) (int, error)
	DailyAppointmentCounts(ctx context.Context, doctorID int, from time.Time) ([]models.DailyCount, error)
	SearchAppointments(ctx context.Context, term string) ([]models.AppointmentRecord, error)
	RecentAppointments(ctx context.Context, limit int) ([]models.AppointmentRecord, error)

	// Treatments
	GetTreatmentByAppointment(ctx context.Context, appointmentID int) (*models.Treatment, error)
	UpsertTreatment(ctx context.Context, t *models.Treatment) error
	ListDoctorTreatments(ctx context.Context, doctorID int) ([]models.TreatmentRecord, error)
	ListPatientTreatments(ctx context.Context, patientID, doctorID int) ([]models.TreatmentRecord, error)

	// Medical history
	GetMedicalHistory(ctx context.Context, patientID int) (*models.MedicalHistory, error)
	SaveMedicalHistory(ctx context.Context, h *models.MedicalHistory) error

	// Availability
	GetAvailability(ctx context.Context, doctorID int, date time.Time) (*models.DoctorAvailability, error)
	UpsertAvailability(ctx context.Context, av *models.DoctorAvailability) error
	// MarkUnavailable flips an existing (doctor, date) row to unavailable and
	// is a no-op when no row exists.
	MarkUnavailable(ctx context.Context, doctorID int, date time.Time) error

	// Request logs
	SaveRequestLog(ctx context.Context, l *models.RequestLog) error
}

// DateOnly truncates t to its calendar day in local time. Availability and
// appointment dates are always compared at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
