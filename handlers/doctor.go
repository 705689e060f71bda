package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

// rosterLimit caps the dashboard roster at the five most recently seen
// patients.
const rosterLimit = 5

// doctorFor resolves the doctor profile behind the authenticated account.
func (h *Handler) doctorFor(c *fiber.Ctx) (*models.Doctor, error) {
	return h.store.GetDoctorByUserID(c.Context(), currentUserID(c))
}

// ownAppointment loads an appointment and verifies it belongs to the doctor.
// Foreign appointments are indistinguishable from missing ones.
func (h *Handler) ownAppointment(c *fiber.Ctx, doctorID int) (*models.Appointment, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, models.ErrValidation
	}
	appt, err := h.store.GetAppointment(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, models.ErrNotFound
	}
	return appt, nil
}

// DoctorDashboard returns the doctor landing-page counters, patient roster and
// a 7-day appointment chart.
func (h *Handler) DoctorDashboard(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	ctx := c.Context()
	var dash models.DoctorDashboard

	now := today()
	if dash.TodaysAppointments, err = h.store.CountAppointments(ctx, models.AppointmentFilter{
		DoctorID: doctor.ID, DateFrom: now, DateTo: now,
	}); err != nil {
		return fail(c, err)
	}
	if dash.PendingConsultations, err = h.store.CountAppointments(ctx, models.AppointmentFilter{
		DoctorID: doctor.ID, Status: models.StatusBooked,
	}); err != nil {
		return fail(c, err)
	}
	if dash.UpcomingAppointments, err = h.store.CountAppointments(ctx, models.AppointmentFilter{
		DoctorID: doctor.ID, DateFrom: now, DateTo: now.AddDate(0, 0, 7),
	}); err != nil {
		return fail(c, err)
	}

	roster, err := h.store.ListDoctorPatients(ctx, doctor.ID)
	if err != nil {
		return fail(c, err)
	}
	for _, p := range roster {
		if len(dash.AssignedPatients) == rosterLimit {
			break
		}
		dash.AssignedPatients = append(dash.AssignedPatients, p.PatientRecord)
	}

	counts, err := h.store.DailyAppointmentCounts(ctx, doctor.ID, now.AddDate(0, 0, -6))
	if err != nil {
		return fail(c, err)
	}
	byDay := make(map[time.Time]int, len(counts))
	for _, dc := range counts {
		byDay[storage.DateOnly(dc.Date)] = dc.Count
	}
	for i := -6; i <= 0; i++ {
		day := now.AddDate(0, 0, i)
		dash.Chart = append(dash.Chart, models.DailyCount{Date: day, Count: byDay[day]})
	}
	return c.JSON(dash)
}

// DoctorAppointments lists the doctor's worklist. filter is all, today or
// upcoming.
func (h *Handler) DoctorAppointments(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}

	var filter models.AppointmentFilter
	switch c.Query("filter", "all") {
	case "all":
	case "today":
		filter.DateFrom = today()
		filter.DateTo = today()
	case "upcoming":
		filter.DateFrom = today().AddDate(0, 0, 1)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "filter must be all, today or upcoming"})
	}

	appointments, err := h.store.ListDoctorAppointments(c.Context(), doctor.ID, filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

// ViewAppointment returns one appointment with its treatment, if recorded.
func (h *Handler) ViewAppointment(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	appt, err := h.ownAppointment(c, doctor.ID)
	if err != nil {
		return fail(c, err)
	}

	patient, err := h.store.GetPatientByID(c.Context(), appt.PatientID)
	if err != nil {
		return fail(c, err)
	}
	treatment, err := h.store.GetTreatmentByAppointment(c.Context(), appt.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"appointment": appt,
		"patient":     patient,
		"treatment":   treatment,
	})
}

// MarkComplete sets the appointment status to Completed. Repeat calls are
// harmless.
func (h *Handler) MarkComplete(c *fiber.Ctx) error {
	return h.markStatus(c, models.StatusCompleted)
}

// MarkCancel sets the appointment status to Cancelled.
func (h *Handler) MarkCancel(c *fiber.Ctx) error {
	return h.markStatus(c, models.StatusCancelled)
}

func (h *Handler) markStatus(c *fiber.Ctx, status models.AppointmentStatus) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	appt, err := h.ownAppointment(c, doctor.ID)
	if err != nil {
		return fail(c, err)
	}

	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		return tx.SetAppointmentStatus(c.Context(), appt.ID, status)
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "appointment marked " + string(status)})
}

// DiagnoseForm returns everything the diagnosis screen needs: the appointment,
// the patient, any existing treatment and the medical history.
func (h *Handler) DiagnoseForm(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	appt, err := h.ownAppointment(c, doctor.ID)
	if err != nil {
		return fail(c, err)
	}

	patient, err := h.store.GetPatientByID(c.Context(), appt.PatientID)
	if err != nil {
		return fail(c, err)
	}
	treatment, err := h.store.GetTreatmentByAppointment(c.Context(), appt.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fail(c, err)
	}
	history, err := h.store.GetMedicalHistory(c.Context(), appt.PatientID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"appointment": appt,
		"patient":     patient,
		"treatment":   treatment,
		"history":     history,
	})
}

// Diagnose records the clinical outcome of an appointment. The treatment
// upsert, the medical-history append and the status change commit together or
// not at all.
func (h *Handler) Diagnose(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	appt, err := h.ownAppointment(c, doctor.ID)
	if err != nil {
		return fail(c, err)
	}

	var req models.DiagnoseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Diagnosis == "" {
		return c.Status(400).JSON(fiber.Map{"error": "diagnosis is required"})
	}
	var nextVisit *time.Time
	if req.NextVisitDate != "" {
		d, err := parseDate(req.NextVisitDate)
		if err != nil {
			return fail(c, err)
		}
		nextVisit = &d
	}

	now := time.Now()
	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		treatment := models.Treatment{
			AppointmentID: appt.ID,
			DoctorID:      doctor.ID,
			PatientID:     appt.PatientID,
			Diagnosis:     req.Diagnosis,
			TreatmentPlan: req.TreatmentPlan,
			Prescription:  req.Prescription,
			Notes:         req.Notes,
			NextVisitDate: nextVisit,
			TreatmentDate: now,
		}
		if err := tx.UpsertTreatment(c.Context(), &treatment); err != nil {
			return err
		}

		history, err := tx.GetMedicalHistory(c.Context(), appt.PatientID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				return err
			}
			history = &models.MedicalHistory{PatientID: appt.PatientID}
		}
		history.ChronicConditions = models.AppendEntry(history.ChronicConditions, req.Diagnosis, now)
		if req.Prescription != "" {
			history.CurrentMedications = models.AppendEntry(history.CurrentMedications, req.Prescription, now)
		}
		if err := tx.SaveMedicalHistory(c.Context(), history); err != nil {
			return err
		}

		return tx.SetAppointmentStatus(c.Context(), appt.ID, models.StatusCompleted)
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "diagnosis recorded, appointment completed"})
}

// DoctorPatients lists the doctor's own patients with visit counters.
func (h *Handler) DoctorPatients(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	patients, err := h.store.ListDoctorPatients(c.Context(), doctor.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"patients": patients})
}

// AvailabilityView reconstructs the rolling 7-day availability view. Days with
// no row render with a nil window, which is distinct from an explicit
// unavailable row.
func (h *Handler) AvailabilityView(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}

	var days []models.AvailabilityDay
	start := today()
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		day := models.AvailabilityDay{
			DayIndex: i,
			Date:     date,
			DayName:  date.Weekday().String(),
		}
		av, err := h.store.GetAvailability(c.Context(), doctor.ID, date)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return fail(c, err)
		}
		day.Availability = av
		days = append(days, day)
	}
	return c.JSON(fiber.Map{"days": days})
}

// SetAvailability applies the 7-day availability form. A day marked available
// with both times set is upserted; anything else flips an existing row to
// unavailable. Rows are never deleted.
func (h *Handler) SetAvailability(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.Days) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "no days submitted"})
	}
	for _, day := range req.Days {
		if day.DayIndex < 0 || day.DayIndex > 6 {
			return c.Status(400).JSON(fiber.Map{"error": "day index must be between 0 and 6"})
		}
		if day.Available && day.StartTime != "" && day.EndTime != "" {
			if !validClockTime(day.StartTime) || !validClockTime(day.EndTime) {
				return c.Status(400).JSON(fiber.Map{"error": "times must be in HH:MM format"})
			}
		}
	}

	start := today()
	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		for _, day := range req.Days {
			date := start.AddDate(0, 0, day.DayIndex)
			if day.Available && day.StartTime != "" && day.EndTime != "" {
				av := models.DoctorAvailability{
					DoctorID:  doctor.ID,
					Date:      date,
					StartTime: day.StartTime,
					EndTime:   day.EndTime,
					Available: true,
				}
				if err := tx.UpsertAvailability(c.Context(), &av); err != nil {
					return err
				}
				continue
			}
			if err := tx.MarkUnavailable(c.Context(), doctor.ID, date); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "availability updated"})
}

// DoctorTreatments lists every treatment the doctor has recorded.
func (h *Handler) DoctorTreatments(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	treatments, err := h.store.ListDoctorTreatments(c.Context(), doctor.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"treatments": treatments})
}

// PatientHistory returns a patient's medical history plus the treatments this
// doctor recorded for them.
func (h *Handler) PatientHistory(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	patientID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid patient id"})
	}

	patient, err := h.store.GetPatientByID(c.Context(), patientID)
	if err != nil {
		return fail(c, err)
	}
	history, err := h.store.GetMedicalHistory(c.Context(), patientID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fail(c, err)
	}
	treatments, err := h.store.ListPatientTreatments(c.Context(), patientID, doctor.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"patient":    patient,
		"history":    history,
		"treatments": treatments,
	})
}

// DoctorProfile returns the doctor's own profile with counters.
func (h *Handler) DoctorProfile(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.store.GetUserByID(c.Context(), doctor.UserID)
	if err != nil {
		return fail(c, err)
	}
	department, err := h.store.GetDepartment(c.Context(), doctor.DepartmentID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fail(c, err)
	}
	stats, err := h.store.DoctorStats(c.Context(), doctor.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"doctor":     doctor,
		"user":       user.Response(),
		"department": department,
		"stats":      stats,
	})
}

// DoctorProfileUpdate edits the doctor's own profile fields.
func (h *Handler) DoctorProfileUpdate(c *fiber.Ctx) error {
	doctor, err := h.doctorFor(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.DoctorProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Experience != nil && *req.Experience < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "experience cannot be negative"})
	}

	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.Qualification != "" {
		doctor.Qualification = req.Qualification
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.Gender != "" {
		doctor.Gender = req.Gender
	}

	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		if err := tx.UpdateDoctor(c.Context(), doctor); err != nil {
			return err
		}
		if req.Name != "" {
			return tx.UpdateUserName(c.Context(), doctor.UserID, req.Name)
		}
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "profile updated"})
}
