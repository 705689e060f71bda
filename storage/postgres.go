package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmsdev/hospital-backend/models"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so every
// query method runs unchanged inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    querier
	tx   pgx.Tx
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

// InTx opens a transaction and hands fn a Store bound to it. A nested call
// reuses the surrounding transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStore{pool: s.pool, q: tx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// wrapErr maps driver errors onto the shared taxonomy.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return models.ErrDuplicate
	}
	return err
}

// --- Users ---

const userColumns = "id, username, password, name, role, is_active, mfa_enabled, mfa_secret, created_at, updated_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Name, &u.Role, &u.IsActive,
		&u.MFAEnabled, &u.MFASecret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	err := s.q.QueryRow(ctx,
		`INSERT INTO users (username, password, name, role, is_active, mfa_enabled, mfa_secret, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		u.Username, u.Password, u.Name, u.Role, u.IsActive, u.MFAEnabled, u.MFASecret, now).Scan(&u.ID)
	if err != nil {
		return wrapErr(err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.q.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(s.q.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (s *PostgresStore) UpdateUserName(ctx context.Context, id int, name string) error {
	tag, err := s.q.Exec(ctx,
		"UPDATE users SET name = $1, updated_at = $2 WHERE id = $3", name, time.Now(), id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetUserMFA(ctx context.Context, id int, enabled bool, secret string) error {
	tag, err := s.q.Exec(ctx,
		"UPDATE users SET mfa_enabled = $1, mfa_secret = $2, updated_at = $3 WHERE id = $4",
		enabled, secret, time.Now(), id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// --- Admin profiles ---

func (s *PostgresStore) CreateAdmin(ctx context.Context, userID int) (int, error) {
	var id int
	err := s.q.QueryRow(ctx,
		"INSERT INTO admins (user_id) VALUES ($1) RETURNING id", userID).Scan(&id)
	return id, wrapErr(err)
}

func (s *PostgresStore) GetAdminByUserID(ctx context.Context, userID int) (*models.Admin, error) {
	var a models.Admin
	err := s.q.QueryRow(ctx,
		"SELECT id, user_id FROM admins WHERE user_id = $1", userID).Scan(&a.ID, &a.UserID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &a, nil
}

// --- Departments ---

func (s *PostgresStore) CreateDepartment(ctx context.Context, d *models.Department) error {
	now := time.Now()
	err := s.q.QueryRow(ctx,
		"INSERT INTO departments (name, description, created_at) VALUES ($1, $2, $3) RETURNING id",
		d.Name, d.Description, now).Scan(&d.ID)
	if err != nil {
		return wrapErr(err)
	}
	d.CreatedAt = now
	return nil
}

func (s *PostgresStore) UpdateDepartment(ctx context.Context, id int, name, description string) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE departments SET
			name = CASE WHEN $1 <> '' THEN $1 ELSE name END,
			description = CASE WHEN $2 <> '' THEN $2 ELSE description END
		 WHERE id = $3`, name, description, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetDepartment(ctx context.Context, id int) (*models.Department, error) {
	var d models.Department
	err := s.q.QueryRow(ctx,
		"SELECT id, name, description, created_at FROM departments WHERE id = $1", id).
		Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &d, nil
}

func (s *PostgresStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.q.Query(ctx,
		"SELECT id, name, description, created_at FROM departments ORDER BY name")
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, d)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) ListDepartmentStats(ctx context.Context) ([]models.DepartmentStats, error) {
	rows, err := s.q.Query(ctx,
		`SELECT dep.id, dep.name, dep.description, dep.created_at, COUNT(d.id)
		 FROM departments dep
		 LEFT JOIN doctors d ON d.department_id = dep.id
		 GROUP BY dep.id, dep.name, dep.description, dep.created_at
		 ORDER BY dep.name`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []models.DepartmentStats
	for rows.Next() {
		var ds models.DepartmentStats
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Description, &ds.CreatedAt, &ds.DoctorCount); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, ds)
	}
	return out, wrapErr(rows.Err())
}

// --- Doctors ---

const doctorRecordQuery = `
	SELECT d.id, d.user_id, d.department_id, d.license_number, d.specialization,
	       d.qualification, d.experience, d.gender, d.status, d.admin_id,
	       u.name, u.username, COALESCE(dep.name, '')
	FROM doctors d
	JOIN users u ON u.id = d.user_id
	LEFT JOIN departments dep ON dep.id = d.department_id`

func scanDoctorRecords(rows pgx.Rows) ([]models.DoctorRecord, error) {
	defer rows.Close()
	var out []models.DoctorRecord
	for rows.Next() {
		var r models.DoctorRecord
		err := rows.Scan(&r.ID, &r.UserID, &r.DepartmentID, &r.LicenseNumber, &r.Specialization,
			&r.Qualification, &r.Experience, &r.Gender, &r.Status, &r.AdminID,
			&r.Name, &r.Username, &r.DepartmentName)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, r)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	err := s.q.QueryRow(ctx,
		`INSERT INTO doctors (user_id, department_id, license_number, specialization, qualification, experience, gender, status, admin_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		d.UserID, d.DepartmentID, d.LicenseNumber, d.Specialization, d.Qualification,
		d.Experience, d.Gender, d.Status, d.AdminID).Scan(&d.ID)
	return wrapErr(err)
}

const doctorColumns = "id, user_id, department_id, license_number, specialization, qualification, experience, gender, status, admin_id"

func scanDoctor(row pgx.Row) (*models.Doctor, error) {
	var d models.Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.DepartmentID, &d.LicenseNumber, &d.Specialization,
		&d.Qualification, &d.Experience, &d.Gender, &d.Status, &d.AdminID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &d, nil
}

func (s *PostgresStore) GetDoctorByID(ctx context.Context, id int) (*models.Doctor, error) {
	return scanDoctor(s.q.QueryRow(ctx, "SELECT "+doctorColumns+" FROM doctors WHERE id = $1", id))
}

func (s *PostgresStore) GetDoctorByUserID(ctx context.Context, userID int) (*models.Doctor, error) {
	return scanDoctor(s.q.QueryRow(ctx, "SELECT "+doctorColumns+" FROM doctors WHERE user_id = $1", userID))
}

func (s *PostgresStore) ListDoctors(ctx context.Context) ([]models.DoctorRecord, error) {
	rows, err := s.q.Query(ctx, doctorRecordQuery+" ORDER BY d.id DESC")
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanDoctorRecords(rows)
}

func (s *PostgresStore) RecentDoctors(ctx context.Context, limit int) ([]models.DoctorRecord, error) {
	rows, err := s.q.Query(ctx, doctorRecordQuery+" ORDER BY u.created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanDoctorRecords(rows)
}

func (s *PostgresStore) UpdateDoctor(ctx context.Context, d *models.Doctor) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE doctors SET department_id = $1, specialization = $2, qualification = $3,
		        experience = $4, gender = $5 WHERE id = $6`,
		d.DepartmentID, d.Specialization, d.Qualification, d.Experience, d.Gender, d.ID)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetDoctorStatus(ctx context.Context, doctorID int, active bool) error {
	status := "inactive"
	if active {
		status = "active"
	}
	var userID int
	err := s.q.QueryRow(ctx,
		"UPDATE doctors SET status = $1 WHERE id = $2 RETURNING user_id", status, doctorID).Scan(&userID)
	if err != nil {
		return wrapErr(err)
	}
	_, err = s.q.Exec(ctx,
		"UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3", active, time.Now(), userID)
	return wrapErr(err)
}

func (s *PostgresStore) SearchDoctors(ctx context.Context, term string) ([]models.DoctorRecord, error) {
	pattern := "%" + term + "%"
	rows, err := s.q.Query(ctx, doctorRecordQuery+`
		 WHERE u.name ILIKE $1 OR d.specialization ILIKE $1
		    OR dep.name ILIKE $1 OR d.license_number ILIKE $1
		 ORDER BY d.id`, pattern)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanDoctorRecords(rows)
}

func (s *PostgresStore) DoctorStats(ctx context.Context, doctorID int) (*models.DoctorStats, error) {
	var st models.DoctorStats
	err := s.q.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'Completed'),
		        COUNT(DISTINCT patient_id)
		 FROM appointments WHERE doctor_id = $1`, doctorID).
		Scan(&st.TotalAppointments, &st.CompletedAppointments, &st.TotalPatients)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &st, nil
}

func (s *PostgresStore) CountDoctors(ctx context.Context) (int, int, error) {
	var total, active int
	err := s.q.QueryRow(ctx,
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active') FROM doctors").
		Scan(&total, &active)
	return total, active, wrapErr(err)
}

// --- Patients ---

const patientRecordQuery = `
	SELECT p.id, p.user_id, p.gender, p.dob, p.blood_group, p.address, p.is_active,
	       u.name, u.username
	FROM patients p
	JOIN users u ON u.id = p.user_id`

func scanPatientRecords(rows pgx.Rows) ([]models.PatientRecord, error) {
	defer rows.Close()
	var out []models.PatientRecord
	for rows.Next() {
		var r models.PatientRecord
		err := rows.Scan(&r.ID, &r.UserID, &r.Gender, &r.DOB, &r.BloodGroup, &r.Address,
			&r.IsActive, &r.Name, &r.Username)
		if err != nil {
			return nil, wrapErr(err)
		}
		r.Age = models.CalculateAge(r.DOB)
		out = append(out, r)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	err := s.q.QueryRow(ctx,
		`INSERT INTO patients (user_id, gender, dob, blood_group, address, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.UserID, p.Gender, p.DOB, p.BloodGroup, p.Address, p.IsActive).Scan(&p.ID)
	return wrapErr(err)
}

const patientColumns = "id, user_id, gender, dob, blood_group, address, is_active"

func scanPatient(row pgx.Row) (*models.Patient, error) {
	var p models.Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Gender, &p.DOB, &p.BloodGroup, &p.Address, &p.IsActive)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

func (s *PostgresStore) GetPatientByID(ctx context.Context, id int) (*models.Patient, error) {
	return scanPatient(s.q.QueryRow(ctx, "SELECT "+patientColumns+" FROM patients WHERE id = $1", id))
}

func (s *PostgresStore) GetPatientByUserID(ctx context.Context, userID int) (*models.Patient, error) {
	return scanPatient(s.q.QueryRow(ctx, "SELECT "+patientColumns+" FROM patients WHERE user_id = $1", userID))
}

func (s *PostgresStore) ListPatients(ctx context.Context) ([]models.PatientRecord, error) {
	rows, err := s.q.Query(ctx, patientRecordQuery+" ORDER BY p.id DESC")
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanPatientRecords(rows)
}

func (s *PostgresStore) RecentPatients(ctx context.Context, limit int) ([]models.PatientRecord, error) {
	rows, err := s.q.Query(ctx, patientRecordQuery+" ORDER BY u.created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanPatientRecords(rows)
}

func (s *PostgresStore) SetPatientActive(ctx context.Context, patientID int, active bool) error {
	var userID int
	err := s.q.QueryRow(ctx,
		"UPDATE patients SET is_active = $1 WHERE id = $2 RETURNING user_id", active, patientID).Scan(&userID)
	if err != nil {
		return wrapErr(err)
	}
	_, err = s.q.Exec(ctx,
		"UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3", active, time.Now(), userID)
	return wrapErr(err)
}

func (s *PostgresStore) SearchPatients(ctx context.Context, term string) ([]models.PatientRecord, error) {
	pattern := "%" + term + "%"
	rows, err := s.q.Query(ctx, patientRecordQuery+`
		 WHERE u.name ILIKE $1 OR u.username ILIKE $1 OR p.blood_group ILIKE $1
		 ORDER BY p.id`, pattern)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanPatientRecords(rows)
}

func (s *PostgresStore) ListDoctorPatients(ctx context.Context, doctorID int) ([]models.DoctorPatient, error) {
	rows, err := s.q.Query(ctx,
		`SELECT p.id, p.user_id, p.gender, p.dob, p.blood_group, p.address, p.is_active,
		        u.name, u.username, COUNT(a.id), MAX(a.appoint_date)
		 FROM patients p
		 JOIN users u ON u.id = p.user_id
		 JOIN appointments a ON a.patient_id = p.id
		 WHERE a.doctor_id = $1
		 GROUP BY p.id, p.user_id, p.gender, p.dob, p.blood_group, p.address, p.is_active, u.name, u.username
		 ORDER BY MAX(a.appoint_date) DESC`, doctorID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []models.DoctorPatient
	for rows.Next() {
		var r models.DoctorPatient
		err := rows.Scan(&r.ID, &r.UserID, &r.Gender, &r.DOB, &r.BloodGroup, &r.Address,
			&r.IsActive, &r.Name, &r.Username, &r.AppointmentCount, &r.LastVisit)
		if err != nil {
			return nil, wrapErr(err)
		}
		r.Age = models.CalculateAge(r.DOB)
		out = append(out, r)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) CountPatients(ctx context.Context) (int, int, error) {
	var total, active int
	err := s.q.QueryRow(ctx,
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM patients").
		Scan(&total, &active)
	return total, active, wrapErr(err)
}

// --- Appointments ---

func appointmentFilterClause(f models.AppointmentFilter, args []any) (string, []any) {
	clause := ""
	if f.Status != "" {
		args = append(args, f.Status)
		clause += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if f.DoctorID != 0 {
		args = append(args, f.DoctorID)
		clause += fmt.Sprintf(" AND a.doctor_id = $%d", len(args))
	}
	if f.PatientID != 0 {
		args = append(args, f.PatientID)
		clause += fmt.Sprintf(" AND a.patient_id = $%d", len(args))
	}
	if !f.DateFrom.IsZero() {
		args = append(args, f.DateFrom)
		clause += fmt.Sprintf(" AND a.appoint_date >= $%d", len(args))
	}
	if !f.DateTo.IsZero() {
		args = append(args, f.DateTo)
		clause += fmt.Sprintf(" AND a.appoint_date <= $%d", len(args))
	}
	return clause, args
}

const appointmentRecordQuery = `
	SELECT a.id, a.appointment_number, a.patient_id, a.doctor_id, a.appoint_date,
	       a.appoint_time, a.status, a.reason, a.admin_id, pu.name, du.name
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN users pu ON pu.id = p.user_id
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id`

func scanAppointmentRecords(rows pgx.Rows) ([]models.AppointmentRecord, error) {
	defer rows.Close()
	var out []models.AppointmentRecord
	for rows.Next() {
		var r models.AppointmentRecord
		err := rows.Scan(&r.ID, &r.AppointmentNumber, &r.PatientID, &r.DoctorID, &r.Date,
			&r.Time, &r.Status, &r.Reason, &r.AdminID, &r.PatientName, &r.DoctorName)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, r)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	err := s.q.QueryRow(ctx,
		`INSERT INTO appointments (appointment_number, patient_id, doctor_id, appoint_date, appoint_time, status, reason, admin_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		a.AppointmentNumber, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Reason, a.AdminID).Scan(&a.ID)
	return wrapErr(err)
}

func (s *PostgresStore) GetAppointment(ctx context.Context, id int) (*models.Appointment, error) {
	var a models.Appointment
	err := s.q.QueryRow(ctx,
		`SELECT id, appointment_number, patient_id, doctor_id, appoint_date, appoint_time, status, reason, admin_id
		 FROM appointments WHERE id = $1`, id).
		Scan(&a.ID, &a.AppointmentNumber, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
			&a.Status, &a.Reason, &a.AdminID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &a, nil
}

func (s *PostgresStore) ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.AppointmentRecord, error) {
	clause, args := appointmentFilterClause(f, nil)
	rows, err := s.q.Query(ctx,
		appointmentRecordQuery+" WHERE 1=1"+clause+" ORDER BY a.appoint_date DESC, a.appoint_time DESC", args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanAppointmentRecords(rows)
}

func (s *PostgresStore) ListDoctorAppointments(ctx context.Context, doctorID int, f models.AppointmentFilter) ([]models.DoctorAppointment, error) {
	f.DoctorID = doctorID
	clause, args := appointmentFilterClause(f, nil)
	rows, err := s.q.Query(ctx,
		`SELECT a.id, a.appointment_number, a.patient_id, a.doctor_id, a.appoint_date,
		        a.appoint_time, a.status, a.reason, a.admin_id,
		        u.name, p.gender, p.dob, p.blood_group, p.address
		 FROM appointments a
		 JOIN patients p ON p.id = a.patient_id
		 JOIN users u ON u.id = p.user_id
		 WHERE 1=1`+clause+` ORDER BY a.appoint_date ASC, a.appoint_time ASC`, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []models.DoctorAppointment
	for rows.Next() {
		var r models.DoctorAppointment
		var dob *time.Time
		err := rows.Scan(&r.ID, &r.AppointmentNumber, &r.PatientID, &r.DoctorID, &r.Date,
			&r.Time, &r.Status, &r.Reason, &r.AdminID,
			&r.PatientName, &r.PatientGender, &dob, &r.PatientBloodGroup, &r.PatientAddress)
		if err != nil {
			return nil, wrapErr(err)
		}
		r.PatientAge = models.CalculateAge(dob)
		out = append(out, r)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) SetAppointmentStatus(ctx context.Context, id int, status models.AppointmentStatus) error {
	tag, err := s.q.Exec(ctx,
		"UPDATE appointments SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountAppointments(ctx context.Context, f models.AppointmentFilter) (int, error) {
	clause, args := appointmentFilterClause(f, nil)
	var n int
	err := s.q.QueryRow(ctx,
		"SELECT COUNT(*) FROM appointments a WHERE 1=1"+clause, args...).Scan(&n)
	return n, wrapErr(err)
}

func (s *PostgresStore) DailyAppointmentCounts(ctx context.Context, doctorID int, from time.Time) ([]models.DailyCount, error) {
	rows, err := s.q.Query(ctx,
		`SELECT appoint_date, COUNT(*) FROM appointments
		 WHERE doctor_id = $1 AND appoint_date >= $2
		 GROUP BY appoint_date ORDER BY appoint_date`, doctorID, from)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []models.DailyCount
	for rows.Next() {
		var dc models.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, dc)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) SearchAppointments(ctx context.Context, term string) ([]models.AppointmentRecord, error) {
	pattern := "%" + term + "%"
	rows, err := s.q.Query(ctx,
		appointmentRecordQuery+`
		 WHERE a.appointment_number ILIKE $1 OR pu.name ILIKE $1 OR du.name ILIKE $1
		 ORDER BY a.appoint_date DESC`, pattern)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanAppointmentRecords(rows)
}

func (s *PostgresStore) RecentAppointments(ctx context.Context, limit int) ([]models.AppointmentRecord, error) {
	rows, err := s.q.Query(ctx,
		appointmentRecordQuery+" ORDER BY a.id DESC LIMIT $1", limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanAppointmentRecords(rows)
}

// --- Treatments ---

func (s *PostgresStore) GetTreatmentByAppointment(ctx context.Context, appointmentID int) (*models.Treatment, error) {
	var t models.Treatment
	err := s.q.QueryRow(ctx,
		`SELECT id, appointment_id, doctor_id, patient_id, diagnosis, treatment_plan,
		        prescription, notes, next_visit_date, treatment_date
		 FROM treatments WHERE appointment_id = $1`, appointmentID).
		Scan(&t.ID, &t.AppointmentID, &t.DoctorID, &t.PatientID, &t.Diagnosis, &t.TreatmentPlan,
			&t.Prescription, &t.Notes, &t.NextVisitDate, &t.TreatmentDate)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &t, nil
}

func (s *PostgresStore) UpsertTreatment(ctx context.Context, t *models.Treatment) error {
	if t.TreatmentDate.IsZero() {
		t.TreatmentDate = time.Now()
	}
	err := s.q.QueryRow(ctx,
		`INSERT INTO treatments (appointment_id, doctor_id, patient_id, diagnosis, treatment_plan, prescription, notes, next_visit_date, treatment_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (appointment_id) DO UPDATE SET
			diagnosis = EXCLUDED.diagnosis,
			treatment_plan = EXCLUDED.treatment_plan,
			prescription = EXCLUDED.prescription,
			notes = EXCLUDED.notes,
			next_visit_date = EXCLUDED.next_visit_date,
			treatment_date = EXCLUDED.treatment_date
		 RETURNING id`,
		t.AppointmentID, t.DoctorID, t.PatientID, t.Diagnosis, t.TreatmentPlan,
		t.Prescription, t.Notes, t.NextVisitDate, t.TreatmentDate).Scan(&t.ID)
	return wrapErr(err)
}

const treatmentRecordQuery = `
	SELECT t.id, t.appointment_id, t.doctor_id, t.patient_id, t.diagnosis, t.treatment_plan,
	       t.prescription, t.notes, t.next_visit_date, t.treatment_date,
	       u.name, a.appoint_date
	FROM treatments t
	JOIN appointments a ON a.id = t.appointment_id
	JOIN patients p ON p.id = t.patient_id
	JOIN users u ON u.id = p.user_id`

func scanTreatmentRecords(rows pgx.Rows) ([]models.TreatmentRecord, error) {
	defer rows.Close()
	var out []models.TreatmentRecord
	for rows.Next() {
		var r models.TreatmentRecord
		err := rows.Scan(&r.ID, &r.AppointmentID, &r.DoctorID, &r.PatientID, &r.Diagnosis,
			&r.TreatmentPlan, &r.Prescription, &r.Notes, &r.NextVisitDate, &r.TreatmentDate,
			&r.PatientName, &r.AppointmentDate)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, r)
	}
	return out, wrapErr(rows.Err())
}

func (s *PostgresStore) ListDoctorTreatments(ctx context.Context, doctorID int) ([]models.TreatmentRecord, error) {
	rows, err := s.q.Query(ctx,
		treatmentRecordQuery+" WHERE t.doctor_id = $1 ORDER BY t.treatment_date DESC", doctorID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanTreatmentRecords(rows)
}

func (s *PostgresStore) ListPatientTreatments(ctx context.Context, patientID, doctorID int) ([]models.TreatmentRecord, error) {
	rows, err := s.q.Query(ctx,
		treatmentRecordQuery+" WHERE t.patient_id = $1 AND t.doctor_id = $2 ORDER BY t.treatment_date DESC",
		patientID, doctorID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return scanTreatmentRecords(rows)
}

// --- Medical history ---

func (s *PostgresStore) GetMedicalHistory(ctx context.Context, patientID int) (*models.MedicalHistory, error) {
	var h models.MedicalHistory
	err := s.q.QueryRow(ctx,
		`SELECT id, patient_id, allergies, chronic_conditions, current_medications, previous_surgeries, created_at
		 FROM medical_history WHERE patient_id = $1`, patientID).
		Scan(&h.ID, &h.PatientID, &h.Allergies, &h.ChronicConditions, &h.CurrentMedications,
			&h.PreviousSurgeries, &h.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &h, nil
}

func (s *PostgresStore) SaveMedicalHistory(ctx context.Context, h *models.MedicalHistory) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	err := s.q.QueryRow(ctx,
		`INSERT INTO medical_history (patient_id, allergies, chronic_conditions, current_medications, previous_surgeries, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (patient_id) DO UPDATE SET
			allergies = EXCLUDED.allergies,
			chronic_conditions = EXCLUDED.chronic_conditions,
			current_medications = EXCLUDED.current_medications,
			previous_surgeries = EXCLUDED.previous_surgeries
		 RETURNING id`,
		h.PatientID, h.Allergies, h.ChronicConditions, h.CurrentMedications,
		h.PreviousSurgeries, h.CreatedAt).Scan(&h.ID)
	return wrapErr(err)
}

// --- Availability ---

func (s *PostgresStore) GetAvailability(ctx context.Context, doctorID int, date time.Time) (*models.DoctorAvailability, error) {
	var av models.DoctorAvailability
	err := s.q.QueryRow(ctx,
		`SELECT id, doctor_id, available_date, start_time, end_time, available, notes
		 FROM doctor_availability WHERE doctor_id = $1 AND available_date = $2`,
		doctorID, DateOnly(date)).
		Scan(&av.ID, &av.DoctorID, &av.Date, &av.StartTime, &av.EndTime, &av.Available, &av.Notes)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &av, nil
}

func (s *PostgresStore) UpsertAvailability(ctx context.Context, av *models.DoctorAvailability) error {
	err := s.q.QueryRow(ctx,
		`INSERT INTO doctor_availability (doctor_id, available_date, start_time, end_time, available, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (doctor_id, available_date) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			available = EXCLUDED.available,
			notes = EXCLUDED.notes
		 RETURNING id`,
		av.DoctorID, DateOnly(av.Date), av.StartTime, av.EndTime, av.Available, av.Notes).Scan(&av.ID)
	return wrapErr(err)
}

func (s *PostgresStore) MarkUnavailable(ctx context.Context, doctorID int, date time.Time) error {
	_, err := s.q.Exec(ctx,
		"UPDATE doctor_availability SET available = false WHERE doctor_id = $1 AND available_date = $2",
		doctorID, DateOnly(date))
	return wrapErr(err)
}

// --- Request logs ---

func (s *PostgresStore) SaveRequestLog(ctx context.Context, l *models.RequestLog) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO request_logs (method, path, status_code, response_time, ip, user_agent, username, role, body, log_level, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.Method, l.Path, l.StatusCode, l.ResponseTime, l.IP, l.UserAgent,
		l.Username, l.Role, l.Body, l.LogLevel, time.Now())
	return wrapErr(err)
}
