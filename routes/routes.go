package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hmsdev/hospital-backend/handlers"
	"github.com/hmsdev/hospital-backend/middleware"
	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

const maxBodySize = 1 << 20 // 1 MiB

// Setup wires middleware and every route onto the app.
func Setup(app *fiber.App, store storage.Store) {
	h := handlers.New(store)

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.BodySizeLimit(maxBodySize))
	app.Use(middleware.RequestLogging(store))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Hospital Management System API",
		})
	})

	// Public
	app.Post("/login", middleware.AuthRateLimiter(), h.Login)
	app.Post("/register", middleware.AuthRateLimiter(), h.Register)

	// Authenticated
	protected := app.Group("/", middleware.Protected(store), middleware.DefaultRateLimiter())
	protected.Get("/logout", h.Logout)
	protected.Get("/dashboard", h.Me)

	mfa := protected.Group("/mfa")
	mfa.Post("/setup", h.MFASetup)
	mfa.Post("/verify", h.MFAVerify)
	mfa.Post("/disable", h.MFADisable)

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/dashboard", h.AdminDashboard)
	admin.Get("/doctors", h.Doctors)
	admin.Post("/doctor/add", h.AddDoctor)
	admin.Post("/doctor/update/:id", h.UpdateDoctor)
	admin.Post("/doctor/toggle/:id/:status", h.ToggleDoctorStatus)
	admin.Get("/patients", h.Patients)
	admin.Post("/patient/toggle/:id", h.TogglePatientStatus)
	admin.Get("/appointments", h.Appointments)
	admin.Get("/search/results", h.Search)
	admin.Post("/search/results", h.Search)
	admin.Get("/departments", h.Departments)
	admin.Post("/department/add", h.AddDepartment)
	admin.Post("/department/update/:id", h.UpdateDepartment)
	admin.Get("/reports", h.Reports)

	doctor := protected.Group("/doctor", middleware.RequireRole(models.RoleDoctor))
	doctor.Get("/dashboard", h.DoctorDashboard)
	doctor.Get("/appointments", h.DoctorAppointments)
	doctor.Get("/appointment/view/:id", h.ViewAppointment)
	doctor.Get("/mark/complete/:id", h.MarkComplete)
	doctor.Get("/mark/cancel/:id", h.MarkCancel)
	doctor.Get("/diagnose/:id", h.DiagnoseForm)
	doctor.Post("/diagnose/:id", h.Diagnose)
	doctor.Get("/patients", h.DoctorPatients)
	doctor.Get("/availability", h.AvailabilityView)
	doctor.Post("/availability", h.SetAvailability)
	doctor.Get("/treatments", h.DoctorTreatments)
	doctor.Get("/patient/history/:id", h.PatientHistory)
	doctor.Get("/profile", h.DoctorProfile)
	doctor.Post("/profile/update", h.DoctorProfileUpdate)

	patient := protected.Group("/patient", middleware.RequireRole(models.RolePatient))
	patient.Get("/dashboard", h.PatientDashboard)
	patient.Get("/doctors", h.PatientDoctors)
	patient.Post("/appointment/book", h.BookAppointment)
}
