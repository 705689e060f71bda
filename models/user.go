package models

import "time"

// User represents the users table. Exactly one profile row (admin, doctor or
// patient) exists per user, matching Role.
type User struct {
	ID         int       `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	Password   string    `json:"password,omitempty" db:"password"`
	Name       string    `json:"name" db:"name"`
	Role       Role      `json:"role" db:"role"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	MFAEnabled bool      `json:"mfa_enabled" db:"mfa_enabled"`
	MFASecret  string    `json:"-" db:"mfa_secret"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Admin represents the admins table (1:1 with an admin user).
type Admin struct {
	ID     int `json:"id" db:"id"`
	UserID int `json:"user_id" db:"user_id"`
}

// UserResponse is the user payload without sensitive fields.
type UserResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Response strips the password and MFA secret off a User.
func (u *User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest is the patient self-registration form.
type RegisterRequest struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Gender     string `json:"gender"`
	DOB        string `json:"dob"` // YYYY-MM-DD
	BloodGroup string `json:"blood_group"`
	Address    string `json:"address"`
}

// LoginRequest carries login credentials. MFACode is only required for accounts
// with MFA enabled.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MFACode  string `json:"mfa_code,omitempty"`
}

// LoginResponse carries the signed token plus the sanitized user and the
// dashboard the client should land on.
type LoginResponse struct {
	Token    string       `json:"token"`
	User     UserResponse `json:"user"`
	Redirect string       `json:"redirect"`
}

type MFASetupRequest struct {
	Password string `json:"password"`
}

type MFASetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

type MFAVerifyRequest struct {
	Code string `json:"code"`
}
