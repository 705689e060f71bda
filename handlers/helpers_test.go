package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/routes"
	"github.com/hmsdev/hospital-backend/storage"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	app := fiber.New()
	routes.Setup(app, store)
	return app, store
}

// doJSON fires a request and decodes the JSON response body into a map.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func seedUser(t *testing.T, store *storage.MemoryStore, username, password string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Password: hashPassword(t, password),
		Name:     "Test " + username,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func seedAdmin(t *testing.T, store *storage.MemoryStore) *models.User {
	t.Helper()
	u := seedUser(t, store, "admin", "admin123", models.RoleAdmin)
	_, err := store.CreateAdmin(context.Background(), u.ID)
	require.NoError(t, err)
	return u
}

func seedDepartment(t *testing.T, store *storage.MemoryStore, name string) *models.Department {
	t.Helper()
	dep := &models.Department{Name: name}
	require.NoError(t, store.CreateDepartment(context.Background(), dep))
	return dep
}

func seedDoctor(t *testing.T, store *storage.MemoryStore, username, license string, departmentID int) *models.Doctor {
	t.Helper()
	u := seedUser(t, store, username, "docpass", models.RoleDoctor)
	d := &models.Doctor{
		UserID:        u.ID,
		DepartmentID:  departmentID,
		LicenseNumber: license,
		Status:        "active",
	}
	require.NoError(t, store.CreateDoctor(context.Background(), d))
	return d
}

func seedPatient(t *testing.T, store *storage.MemoryStore, username string) *models.Patient {
	t.Helper()
	u := seedUser(t, store, username, "patpass", models.RolePatient)
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	p := &models.Patient{
		UserID:     u.ID,
		Gender:     "female",
		DOB:        &dob,
		BloodGroup: "O+",
		Address:    "42 Test Street",
		IsActive:   true,
	}
	require.NoError(t, store.CreatePatient(context.Background(), p))
	return p
}

var apptSeq atomic.Int64

func seedAppointment(t *testing.T, store *storage.MemoryStore, patientID, doctorID int, date time.Time, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	a := &models.Appointment{
		AppointmentNumber: fmt.Sprintf("APT-%08d", apptSeq.Add(1)),
		PatientID:         patientID,
		DoctorID:          doctorID,
		Date:              date,
		Time:              "10:00",
		Status:            status,
		Reason:            "checkup",
	}
	require.NoError(t, store.CreateAppointment(context.Background(), a))
	return a
}

func itoa(id int) string {
	return strconv.Itoa(id)
}

// login authenticates and returns the bearer token.
func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, 200, resp.StatusCode, "login for %s: %v", username, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
