package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

const (
	recentLimit            = 5
	recentAppointmentLimit = 10
)

// AdminDashboard returns the admin landing-page aggregates.
func (h *Handler) AdminDashboard(c *fiber.Ctx) error {
	ctx := c.Context()
	var dash models.AdminDashboard
	var err error

	if dash.TotalDoctors, _, err = h.store.CountDoctors(ctx); err != nil {
		return fail(c, err)
	}
	if dash.TotalPatients, _, err = h.store.CountPatients(ctx); err != nil {
		return fail(c, err)
	}
	if dash.TotalAppointments, err = h.store.CountAppointments(ctx, models.AppointmentFilter{}); err != nil {
		return fail(c, err)
	}
	if dash.RecentDoctors, err = h.store.RecentDoctors(ctx, recentLimit); err != nil {
		return fail(c, err)
	}
	if dash.RecentPatients, err = h.store.RecentPatients(ctx, recentLimit); err != nil {
		return fail(c, err)
	}
	if dash.RecentAppointments, err = h.store.RecentAppointments(ctx, recentAppointmentLimit); err != nil {
		return fail(c, err)
	}
	if dash.Departments, err = h.store.ListDepartments(ctx); err != nil {
		return fail(c, err)
	}
	return c.JSON(dash)
}

// AddDoctor creates a doctor account plus its profile in one unit of work.
func (h *Handler) AddDoctor(c *fiber.Ctx) error {
	var req models.AddDoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Username == "" || req.Password == "" ||
		req.LicenseNumber == "" || req.DepartmentID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "name, username, password, license number and department are required"})
	}
	if req.Experience < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "experience cannot be negative"})
	}
	if _, err := h.store.GetDepartment(c.Context(), req.DepartmentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(400).JSON(fiber.Map{"error": "department does not exist"})
		}
		return fail(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not process password"})
	}

	admin, err := h.store.GetAdminByUserID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}

	user := models.User{
		Username: req.Username,
		Password: string(hash),
		Name:     req.Name,
		Role:     models.RoleDoctor,
		IsActive: true,
	}
	doctor := models.Doctor{
		DepartmentID:   req.DepartmentID,
		LicenseNumber:  req.LicenseNumber,
		Specialization: req.Specialization,
		Qualification:  req.Qualification,
		Experience:     req.Experience,
		Gender:         req.Gender,
		Status:         "active",
		AdminID:        admin.ID,
	}
	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		if err := tx.CreateUser(c.Context(), &user); err != nil {
			return err
		}
		doctor.UserID = user.ID
		return tx.CreateDoctor(c.Context(), &doctor)
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return c.Status(409).JSON(fiber.Map{"error": "username or license number already exists"})
		}
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "doctor added successfully",
		"doctor":  doctor,
	})
}

// Doctors lists the doctor directory.
func (h *Handler) Doctors(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"doctors": doctors})
}

// UpdateDoctor edits a doctor's profile; empty fields keep their stored value.
func (h *Handler) UpdateDoctor(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid doctor id"})
	}
	var req models.UpdateDoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Experience != nil && *req.Experience < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "experience cannot be negative"})
	}

	doctor, err := h.store.GetDoctorByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
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
	if req.DepartmentID != nil {
		if _, err := h.store.GetDepartment(c.Context(), *req.DepartmentID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(400).JSON(fiber.Map{"error": "department does not exist"})
			}
			return fail(c, err)
		}
		doctor.DepartmentID = *req.DepartmentID
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
	return c.JSON(fiber.Map{"message": "doctor updated successfully"})
}

// ToggleDoctorStatus sets a doctor active or inactive. The profile status and
// the account flag are written together.
func (h *Handler) ToggleDoctorStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid doctor id"})
	}
	status := c.Params("status")
	if status != "active" && status != "inactive" {
		return c.Status(400).JSON(fiber.Map{"error": "status must be active or inactive"})
	}

	doctor, err := h.store.GetDoctorByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if doctor.Status == status {
		return c.JSON(fiber.Map{"message": "doctor is already " + status})
	}

	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		return tx.SetDoctorStatus(c.Context(), id, status == "active")
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "doctor marked " + status})
}

// Patients lists the patient directory.
func (h *Handler) Patients(c *fiber.Ctx) error {
	patients, err := h.store.ListPatients(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"patients": patients})
}

// TogglePatientStatus flips a patient's active flag, keeping the profile and
// account flags in lock-step.
func (h *Handler) TogglePatientStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid patient id"})
	}
	patient, err := h.store.GetPatientByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	next := !patient.IsActive
	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		return tx.SetPatientActive(c.Context(), id, next)
	})
	if err != nil {
		return fail(c, err)
	}
	msg := "patient deactivated"
	if next {
		msg = "patient activated"
	}
	return c.JSON(fiber.Map{"message": msg})
}

// Appointments lists appointments with optional status and date filters.
// date=upcoming keeps today and later; date=past keeps strictly earlier days.
func (h *Handler) Appointments(c *fiber.Ctx) error {
	var filter models.AppointmentFilter
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseAppointmentStatus(raw)
		if err != nil {
			return fail(c, err)
		}
		filter.Status = status
	}
	switch c.Query("date") {
	case "":
	case "upcoming":
		filter.DateFrom = today()
	case "past":
		filter.DateTo = today().AddDate(0, 0, -1)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "date filter must be upcoming or past"})
	}

	appointments, err := h.store.ListAppointments(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

// Search runs a case-insensitive substring search over one record type.
// Parameters come from the query string, or from the JSON body on POST.
func (h *Handler) Search(c *fiber.Ctx) error {
	searchType := c.Query("type", "doctor")
	term := c.Query("term")
	if c.Method() == fiber.MethodPost {
		var req struct {
			Type string `json:"type"`
			Term string `json:"term"`
		}
		if err := c.BodyParser(&req); err == nil {
			if req.Type != "" {
				searchType = req.Type
			}
			if req.Term != "" {
				term = req.Term
			}
		}
	}
	if term == "" {
		return c.Status(400).JSON(fiber.Map{"error": "search term is required"})
	}

	results := models.SearchResults{Type: searchType, Term: term}
	var err error
	switch searchType {
	case "doctor":
		results.Doctors, err = h.store.SearchDoctors(c.Context(), term)
	case "patient":
		results.Patients, err = h.store.SearchPatients(c.Context(), term)
	case "appointment":
		results.Appointments, err = h.store.SearchAppointments(c.Context(), term)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "type must be doctor, patient or appointment"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(results)
}

// Departments lists departments with their doctor headcounts.
func (h *Handler) Departments(c *fiber.Ctx) error {
	stats, err := h.store.ListDepartmentStats(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"departments": stats})
}

// AddDepartment creates a department. Names are unique.
func (h *Handler) AddDepartment(c *fiber.Ctx) error {
	var req models.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "department name is required"})
	}

	dep := models.Department{Name: req.Name, Description: req.Description}
	err := h.store.InTx(c.Context(), func(tx storage.Store) error {
		return tx.CreateDepartment(c.Context(), &dep)
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return c.Status(409).JSON(fiber.Map{"error": "department already exists"})
		}
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message":    "department added successfully",
		"department": dep,
	})
}

// UpdateDepartment edits a department's name or description.
func (h *Handler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid department id"})
	}
	var req models.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" && req.Description == "" {
		return c.Status(400).JSON(fiber.Map{"error": "nothing to update"})
	}

	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		return tx.UpdateDepartment(c.Context(), id, req.Name, req.Description)
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return c.Status(409).JSON(fiber.Map{"error": "department name already exists"})
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "department updated successfully"})
}

// Reports computes the full reporting view per request; nothing is cached.
func (h *Handler) Reports(c *fiber.Ctx) error {
	ctx := c.Context()
	var report models.AdminReport
	var err error

	if report.TotalDoctors, report.ActiveDoctors, err = h.store.CountDoctors(ctx); err != nil {
		return fail(c, err)
	}
	report.InactiveDoctors = report.TotalDoctors - report.ActiveDoctors

	if report.TotalPatients, report.ActivePatients, err = h.store.CountPatients(ctx); err != nil {
		return fail(c, err)
	}
	report.InactivePatients = report.TotalPatients - report.ActivePatients

	if report.TotalAppointments, err = h.store.CountAppointments(ctx, models.AppointmentFilter{}); err != nil {
		return fail(c, err)
	}
	for status, dst := range map[models.AppointmentStatus]*int{
		models.StatusBooked:    &report.BookedAppointments,
		models.StatusCompleted: &report.CompletedAppointments,
		models.StatusCancelled: &report.CancelledAppointments,
	} {
		if *dst, err = h.store.CountAppointments(ctx, models.AppointmentFilter{Status: status}); err != nil {
			return fail(c, err)
		}
	}

	stats, err := h.store.ListDepartmentStats(ctx)
	if err != nil {
		return fail(c, err)
	}
	for _, s := range stats {
		report.DepartmentCounts = append(report.DepartmentCounts, models.DepartmentCount{
			Name:        s.Name,
			DoctorCount: s.DoctorCount,
		})
	}

	if report.RecentDoctors, err = h.store.RecentDoctors(ctx, recentLimit); err != nil {
		return fail(c, err)
	}
	if report.RecentPatients, err = h.store.RecentPatients(ctx, recentLimit); err != nil {
		return fail(c, err)
	}
	if report.RecentAppointments, err = h.store.RecentAppointments(ctx, recentLimit); err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}
