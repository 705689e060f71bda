package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

// PatientDashboard returns the patient's own appointments, treatments and
// medical history.
func (h *Handler) PatientDashboard(c *fiber.Ctx) error {
	patient, err := h.store.GetPatientByUserID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}

	appointments, err := h.store.ListAppointments(c.Context(), models.AppointmentFilter{
		PatientID: patient.ID,
	})
	if err != nil {
		return fail(c, err)
	}
	history, err := h.store.GetMedicalHistory(c.Context(), patient.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"role":         models.RolePatient,
		"patient":      patient,
		"age":          models.CalculateAge(patient.DOB),
		"appointments": appointments,
		"history":      history,
	})
}

// PatientDoctors lists active doctors for the booking form.
func (h *Handler) PatientDoctors(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.Context())
	if err != nil {
		return fail(c, err)
	}
	active := make([]models.DoctorRecord, 0, len(doctors))
	for _, d := range doctors {
		if d.Status == "active" {
			active = append(active, d)
		}
	}
	return c.JSON(fiber.Map{"doctors": active})
}

// BookAppointment books a slot with a doctor. Slots are not checked for
// conflicts; overlapping bookings are allowed.
func (h *Handler) BookAppointment(c *fiber.Ctx) error {
	patient, err := h.store.GetPatientByUserID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}

	var req models.BookAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.DoctorID == 0 || req.Date == "" || req.Time == "" {
		return c.Status(400).JSON(fiber.Map{"error": "doctor, date and time are required"})
	}
	if !validClockTime(req.Time) {
		return c.Status(400).JSON(fiber.Map{"error": "time must be in HH:MM format"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return fail(c, err)
	}
	if date.Before(today()) {
		return c.Status(400).JSON(fiber.Map{"error": "appointment date cannot be in the past"})
	}

	doctor, err := h.store.GetDoctorByID(c.Context(), req.DoctorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(400).JSON(fiber.Map{"error": "doctor does not exist"})
		}
		return fail(c, err)
	}
	if doctor.Status != "active" {
		return c.Status(400).JSON(fiber.Map{"error": "doctor is not currently available"})
	}

	appt := models.Appointment{
		AppointmentNumber: newAppointmentNumber(),
		PatientID:         patient.ID,
		DoctorID:          doctor.ID,
		Date:              date,
		Time:              req.Time,
		Status:            models.StatusBooked,
		Reason:            req.Reason,
	}
	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		return tx.CreateAppointment(c.Context(), &appt)
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message":     "appointment booked",
		"appointment": appt,
	})
}

func newAppointmentNumber() string {
	return "APT-" + strings.ToUpper(uuid.NewString()[:8])
}
