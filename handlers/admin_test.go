package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

func TestAddDoctorAndDuplicateLicense(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	dep := seedDepartment(t, store, "Cardiology")
	token := login(t, app, "admin", "admin123")

	form := fiber.Map{
		"name":           "Gregory House",
		"username":       "ghouse",
		"password":       "lupus123",
		"gender":         "male",
		"department_id":  dep.ID,
		"license_number": "LIC-1",
		"specialization": "Diagnostics",
		"qualification":  "MD",
		"experience":     15,
	}
	resp, body := doJSON(t, app, "POST", "/admin/doctor/add", token, form)
	require.Equal(t, 201, resp.StatusCode, "add doctor: %v", body)

	// Second doctor with the same license: rejected, no row created.
	form["username"] = "jwilson"
	resp, _ = doJSON(t, app, "POST", "/admin/doctor/add", token, form)
	assert.Equal(t, 409, resp.StatusCode)

	doctors, err := store.ListDoctors(context.Background())
	require.NoError(t, err)
	assert.Len(t, doctors, 1)

	// The rejected unit of work must not leave the orphan account behind.
	_, err = store.GetUserByUsername(context.Background(), "jwilson")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddDoctorUnknownDepartment(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	token := login(t, app, "admin", "admin123")

	resp, _ := doJSON(t, app, "POST", "/admin/doctor/add", token, fiber.Map{
		"name":           "Gregory House",
		"username":       "ghouse",
		"password":       "lupus123",
		"department_id":  99,
		"license_number": "LIC-1",
	})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestUpdateDoctor(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	token := login(t, app, "admin", "admin123")

	resp, _ := doJSON(t, app, "POST", "/admin/doctor/update/"+itoa(d.ID), token, fiber.Map{
		"specialization": "Nephrology",
		"experience":     20,
	})
	require.Equal(t, 200, resp.StatusCode)

	got, err := store.GetDoctorByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nephrology", got.Specialization)
	assert.Equal(t, 20, got.Experience)
	assert.Equal(t, "LIC-1", got.LicenseNumber)
}

func TestToggleDoctorStatus(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	token := login(t, app, "admin", "admin123")

	resp, _ := doJSON(t, app, "POST", "/admin/doctor/toggle/"+itoa(d.ID)+"/inactive", token, nil)
	require.Equal(t, 200, resp.StatusCode)

	doctor, err := store.GetDoctorByID(context.Background(), d.ID)
	require.NoError(t, err)
	user, err := store.GetUserByID(context.Background(), doctor.UserID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", doctor.Status)
	assert.False(t, user.IsActive)

	// Repeating the same toggle is harmless.
	resp, body := doJSON(t, app, "POST", "/admin/doctor/toggle/"+itoa(d.ID)+"/inactive", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, body["message"], "already")

	// Deactivated doctors can no longer log in.
	resp, _ = doJSON(t, app, "POST", "/login", "", fiber.Map{
		"username": "ghouse",
		"password": "docpass",
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/admin/doctor/toggle/"+itoa(d.ID)+"/paused", token, nil)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestTogglePatientStatus(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	p := seedPatient(t, store, "alice")
	token := login(t, app, "admin", "admin123")

	resp, _ := doJSON(t, app, "POST", "/admin/patient/toggle/"+itoa(p.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)

	patient, err := store.GetPatientByID(context.Background(), p.ID)
	require.NoError(t, err)
	user, err := store.GetUserByID(context.Background(), patient.UserID)
	require.NoError(t, err)
	assert.False(t, patient.IsActive)
	assert.False(t, user.IsActive)

	// Toggling again reactivates.
	resp, _ = doJSON(t, app, "POST", "/admin/patient/toggle/"+itoa(p.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	patient, err = store.GetPatientByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, patient.IsActive)
}

func TestAdminAppointmentsFilters(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	p := seedPatient(t, store, "alice")
	token := login(t, app, "admin", "admin123")

	today := storage.DateOnly(time.Now())
	seedAppointment(t, store, p.ID, d.ID, today.AddDate(0, 0, -3), models.StatusCompleted)
	seedAppointment(t, store, p.ID, d.ID, today, models.StatusBooked)
	seedAppointment(t, store, p.ID, d.ID, today.AddDate(0, 0, 2), models.StatusBooked)

	resp, body := doJSON(t, app, "GET", "/admin/appointments", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["appointments"], 3)

	resp, body = doJSON(t, app, "GET", "/admin/appointments?status=Booked", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["appointments"], 2)

	resp, body = doJSON(t, app, "GET", "/admin/appointments?date=upcoming", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["appointments"], 2)

	resp, body = doJSON(t, app, "GET", "/admin/appointments?date=past", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["appointments"], 1)

	resp, _ = doJSON(t, app, "GET", "/admin/appointments?status=Done", token, nil)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAdminSearch(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	dep := seedDepartment(t, store, "Cardiology")
	seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	seedPatient(t, store, "alice")
	token := login(t, app, "admin", "admin123")

	resp, body := doJSON(t, app, "GET", "/admin/search/results?type=doctor&term=lic-1", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["doctors"], 1)

	resp, body = doJSON(t, app, "GET", "/admin/search/results?type=patient&term=ALI", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["patients"], 1)

	resp, _ = doJSON(t, app, "GET", "/admin/search/results?type=doctor", token, nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/admin/search/results?type=ward&term=x", token, nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body = doJSON(t, app, "POST", "/admin/search/results", token, fiber.Map{
		"type": "doctor",
		"term": "lic-1",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["doctors"], 1)

	resp, _ = doJSON(t, app, "POST", "/admin/search/results", token, fiber.Map{"type": "doctor"})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestDepartments(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	token := login(t, app, "admin", "admin123")

	resp, body := doJSON(t, app, "POST", "/admin/department/add", token, fiber.Map{
		"name":        "Cardiology",
		"description": "Heart care",
	})
	require.Equal(t, 201, resp.StatusCode, "add department: %v", body)

	resp, _ = doJSON(t, app, "POST", "/admin/department/add", token, fiber.Map{
		"name": "Cardiology",
	})
	assert.Equal(t, 409, resp.StatusCode)

	deps, err := store.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, deps, 1)

	resp, _ = doJSON(t, app, "POST", "/admin/department/update/"+itoa(deps[0].ID), token, fiber.Map{
		"description": "Cardiac care",
	})
	require.Equal(t, 200, resp.StatusCode)

	got, err := store.GetDepartment(context.Background(), deps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiac care", got.Description)

	resp, _ = doJSON(t, app, "POST", "/admin/department/add", token, fiber.Map{
		"name": "Neurology",
	})
	require.Equal(t, 201, resp.StatusCode)

	neuro, err := store.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, neuro, 2)

	// Renaming onto an existing department name is rejected.
	resp, _ = doJSON(t, app, "POST", "/admin/department/update/"+itoa(neuro[1].ID), token, fiber.Map{
		"name": "Cardiology",
	})
	assert.Equal(t, 409, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/admin/departments", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["departments"], 2)
}

func TestAdminReports(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	p := seedPatient(t, store, "alice")
	today := storage.DateOnly(time.Now())
	seedAppointment(t, store, p.ID, d.ID, today, models.StatusBooked)
	seedAppointment(t, store, p.ID, d.ID, today, models.StatusCompleted)
	token := login(t, app, "admin", "admin123")

	resp, body := doJSON(t, app, "GET", "/admin/reports", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_doctors"])
	assert.EqualValues(t, 1, body["active_doctors"])
	assert.EqualValues(t, 1, body["total_patients"])
	assert.EqualValues(t, 2, body["total_appointments"])
	assert.EqualValues(t, 1, body["booked_appointments"])
	assert.EqualValues(t, 1, body["completed_appointments"])
	assert.EqualValues(t, 0, body["cancelled_appointments"])
}

func TestAdminDashboard(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	p := seedPatient(t, store, "alice")
	today := storage.DateOnly(time.Now())
	for i := 0; i < 12; i++ {
		seedAppointment(t, store, p.ID, d.ID, today.AddDate(0, 0, -i), models.StatusCompleted)
	}
	token := login(t, app, "admin", "admin123")

	resp, body := doJSON(t, app, "GET", "/admin/dashboard", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_doctors"])
	assert.EqualValues(t, 1, body["total_patients"])
	assert.EqualValues(t, 12, body["total_appointments"])
	assert.Len(t, body["recent_appointments"], 10)
	assert.Len(t, body["departments"], 1)
}
