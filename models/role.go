package models

import "fmt"

// Role is the closed set of account roles. It is validated at the boundary and
// never trusted from client input.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// AppointmentStatus is the appointment state machine: Booked is the only
// non-terminal state.
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "Booked"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// ParseAppointmentStatus validates a raw status string.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case StatusBooked, StatusCompleted, StatusCancelled:
		return AppointmentStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown appointment status %q", ErrValidation, s)
}
