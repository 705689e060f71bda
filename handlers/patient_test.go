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

func TestPatientDashboard(t *testing.T) {
	app, store := newTestApp(t)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	p := seedPatient(t, store, "alice")
	seedAppointment(t, store, p.ID, d.ID, storage.DateOnly(time.Now()), models.StatusBooked)
	token := login(t, app, "alice", "patpass")

	resp, body := doJSON(t, app, "GET", "/patient/dashboard", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "patient", body["role"])
	assert.Len(t, body["appointments"], 1)
	assert.NotNil(t, body["age"])
}

func TestBookAppointment(t *testing.T) {
	app, store := newTestApp(t)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	p := seedPatient(t, store, "alice")
	token := login(t, app, "alice", "patpass")

	date := storage.DateOnly(time.Now()).AddDate(0, 0, 3).Format("2006-01-02")
	resp, body := doJSON(t, app, "POST", "/patient/appointment/book", token, fiber.Map{
		"doctor_id": d.ID,
		"date":      date,
		"time":      "10:30",
		"reason":    "persistent cough",
	})
	require.Equal(t, 201, resp.StatusCode, "book: %v", body)

	appt, ok := body["appointment"].(map[string]interface{})
	require.True(t, ok)
	number, _ := appt["appointment_number"].(string)
	assert.Regexp(t, `^APT-[0-9A-F]{8}$`, number)
	assert.Equal(t, "Booked", appt["status"])

	appointments, err := store.ListAppointments(context.Background(), models.AppointmentFilter{
		PatientID: p.ID,
	})
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
}

func TestBookAppointmentToday(t *testing.T) {
	app, store := newTestApp(t)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	seedPatient(t, store, "alice")
	token := login(t, app, "alice", "patpass")

	// Same-day booking is allowed; only earlier days are in the past.
	resp, body := doJSON(t, app, "POST", "/patient/appointment/book", token, fiber.Map{
		"doctor_id": d.ID,
		"date":      time.Now().Format("2006-01-02"),
		"time":      "15:00",
		"reason":    "follow-up",
	})
	require.Equal(t, 201, resp.StatusCode, "book: %v", body)
}

func TestBookAppointmentValidation(t *testing.T) {
	app, store := newTestApp(t)
	dep := seedDepartment(t, store, "Cardiology")
	d := seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	seedPatient(t, store, "alice")
	token := login(t, app, "alice", "patpass")

	future := storage.DateOnly(time.Now()).AddDate(0, 0, 3).Format("2006-01-02")

	// Past date.
	past := storage.DateOnly(time.Now()).AddDate(0, 0, -1).Format("2006-01-02")
	resp, _ := doJSON(t, app, "POST", "/patient/appointment/book", token, fiber.Map{
		"doctor_id": d.ID, "date": past, "time": "10:30",
	})
	assert.Equal(t, 400, resp.StatusCode)

	// Malformed time.
	resp, _ = doJSON(t, app, "POST", "/patient/appointment/book", token, fiber.Map{
		"doctor_id": d.ID, "date": future, "time": "25:99",
	})
	assert.Equal(t, 400, resp.StatusCode)

	// Unknown doctor.
	resp, _ = doJSON(t, app, "POST", "/patient/appointment/book", token, fiber.Map{
		"doctor_id": 99, "date": future, "time": "10:30",
	})
	assert.Equal(t, 400, resp.StatusCode)

	// Inactive doctor.
	require.NoError(t, store.SetDoctorStatus(context.Background(), d.ID, false))
	resp, _ = doJSON(t, app, "POST", "/patient/appointment/book", token, fiber.Map{
		"doctor_id": d.ID, "date": future, "time": "10:30",
	})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestPatientDoctorsListsOnlyActive(t *testing.T) {
	app, store := newTestApp(t)
	dep := seedDepartment(t, store, "Cardiology")
	seedDoctor(t, store, "ghouse", "LIC-1", dep.ID)
	inactive := seedDoctor(t, store, "jwilson", "LIC-2", dep.ID)
	require.NoError(t, store.SetDoctorStatus(context.Background(), inactive.ID, false))
	seedPatient(t, store, "alice")
	token := login(t, app, "alice", "patpass")

	resp, body := doJSON(t, app, "GET", "/patient/doctors", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["doctors"], 1)
}
