package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(80) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		name VARCHAR(120) NOT NULL,
		role VARCHAR(20) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		mfa_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		mfa_secret VARCHAR(64) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS departments (
		id SERIAL PRIMARY KEY,
		name VARCHAR(120) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		department_id INTEGER NOT NULL REFERENCES departments(id),
		license_number VARCHAR(50) NOT NULL UNIQUE,
		specialization VARCHAR(120) NOT NULL DEFAULT '',
		qualification VARCHAR(120) NOT NULL DEFAULT '',
		experience INTEGER NOT NULL DEFAULT 0,
		gender VARCHAR(20) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		admin_id INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		gender VARCHAR(20) NOT NULL DEFAULT '',
		dob DATE,
		blood_group VARCHAR(10) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id SERIAL PRIMARY KEY,
		appointment_number VARCHAR(20) NOT NULL UNIQUE,
		patient_id INTEGER NOT NULL REFERENCES patients(id),
		doctor_id INTEGER NOT NULL REFERENCES doctors(id),
		appoint_date DATE NOT NULL,
		appoint_time VARCHAR(5) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'Booked',
		reason TEXT NOT NULL DEFAULT '',
		admin_id INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS treatments (
		id SERIAL PRIMARY KEY,
		appointment_id INTEGER NOT NULL UNIQUE REFERENCES appointments(id),
		doctor_id INTEGER NOT NULL REFERENCES doctors(id),
		patient_id INTEGER NOT NULL REFERENCES patients(id),
		diagnosis TEXT NOT NULL DEFAULT '',
		treatment_plan TEXT NOT NULL DEFAULT '',
		prescription TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		next_visit_date DATE,
		treatment_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS doctor_availability (
		id SERIAL PRIMARY KEY,
		doctor_id INTEGER NOT NULL REFERENCES doctors(id),
		available_date DATE NOT NULL,
		start_time VARCHAR(5) NOT NULL DEFAULT '',
		end_time VARCHAR(5) NOT NULL DEFAULT '',
		available BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		UNIQUE (doctor_id, available_date)
	)`,
	`CREATE TABLE IF NOT EXISTS medical_history (
		id SERIAL PRIMARY KEY,
		patient_id INTEGER NOT NULL UNIQUE REFERENCES patients(id),
		allergies TEXT NOT NULL DEFAULT '',
		chronic_conditions TEXT NOT NULL DEFAULT '',
		current_medications TEXT NOT NULL DEFAULT '',
		previous_surgeries TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS request_logs (
		id SERIAL PRIMARY KEY,
		method VARCHAR(10) NOT NULL,
		path TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		response_time INTEGER NOT NULL,
		ip VARCHAR(45) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		username VARCHAR(80) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		log_level VARCHAR(10) NOT NULL DEFAULT 'info',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var defaultDepartments = []string{
	"Cardiology",
	"Neurology",
	"Orthopedics",
	"Pediatrics",
	"Gynecology",
	"Dermatology",
	"Oncology",
	"Radiology",
	"Emergency Medicine",
	"General Surgery",
	"Internal Medicine",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
	"Urology",
	"Anesthesiology",
	"Pathology",
	"Nutrition & Dietetics",
}

// Migrate creates every table the application reads or writes. Statements are
// idempotent so startup can run them unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Seed inserts the super admin account and the standard department catalog.
// Existing rows are left untouched, so reruns are safe.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE username = 'admin')").Scan(&exists)
	if err != nil {
		return fmt.Errorf("check super admin: %w", err)
	}
	if !exists {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		var userID int
		err = pool.QueryRow(ctx,
			`INSERT INTO users (username, password, name, role)
			 VALUES ('admin', $1, 'Super Admin', 'admin') RETURNING id`, string(hash)).Scan(&userID)
		if err != nil {
			return fmt.Errorf("seed super admin: %w", err)
		}
		if _, err := pool.Exec(ctx, "INSERT INTO admins (user_id) VALUES ($1)", userID); err != nil {
			return fmt.Errorf("seed super admin profile: %w", err)
		}
		log.Println("seeded super admin account")
	}

	for _, name := range defaultDepartments {
		_, err := pool.Exec(ctx,
			"INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
		if err != nil {
			return fmt.Errorf("seed department %s: %w", name, err)
		}
	}
	return nil
}
