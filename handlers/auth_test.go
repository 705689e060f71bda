package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmsdev/hospital-backend/models"
)

func TestRegisterLoginDashboard(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/register", "", fiber.Map{
		"name":        "Alice Smith",
		"username":    "alice",
		"password":    "pw123",
		"gender":      "female",
		"dob":         "1992-04-01",
		"blood_group": "A+",
		"address":     "1 Main Street",
	})
	require.Equal(t, 201, resp.StatusCode, "register: %v", body)

	token := login(t, app, "alice", "pw123")

	resp, body = doJSON(t, app, "GET", "/patient/dashboard", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "patient", body["role"])
}

func TestRegisterMissingFields(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/register", "", fiber.Map{
		"username": "bob",
		"password": "pw123",
	})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app, store := newTestApp(t)
	seedPatient(t, store, "alice")

	resp, _ := doJSON(t, app, "POST", "/register", "", fiber.Map{
		"name":        "Alice Clone",
		"username":    "alice",
		"password":    "pw123",
		"gender":      "female",
		"dob":         "1992-04-01",
		"blood_group": "A+",
		"address":     "1 Main Street",
	})
	assert.Equal(t, 409, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	app, store := newTestApp(t)
	seedPatient(t, store, "alice")

	resp, _ := doJSON(t, app, "POST", "/login", "", fiber.Map{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	app, store := newTestApp(t)
	p := seedPatient(t, store, "alice")
	require.NoError(t, store.SetPatientActive(context.Background(), p.ID, false))

	resp, _ := doJSON(t, app, "POST", "/login", "", fiber.Map{
		"username": "alice",
		"password": "patpass",
	})
	assert.Equal(t, 403, resp.StatusCode)
}

func TestLoginRedirectByRole(t *testing.T) {
	app, store := newTestApp(t)
	seedAdmin(t, store)

	resp, body := doJSON(t, app, "POST", "/login", "", fiber.Map{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard", body["redirect"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, "GET", "/patient/dashboard", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/admin/dashboard", "garbage-token", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRoleGateRejectsOtherRoles(t *testing.T) {
	app, store := newTestApp(t)
	seedPatient(t, store, "alice")
	token := login(t, app, "alice", "patpass")

	for _, path := range []string{"/admin/dashboard", "/doctor/dashboard"} {
		resp, _ := doJSON(t, app, "GET", path, token, nil)
		assert.Equal(t, 403, resp.StatusCode, path)
	}
}

func TestTokenRejectedAfterDeactivation(t *testing.T) {
	app, store := newTestApp(t)
	p := seedPatient(t, store, "alice")
	token := login(t, app, "alice", "patpass")

	require.NoError(t, store.SetPatientActive(context.Background(), p.ID, false))

	resp, _ := doJSON(t, app, "GET", "/patient/dashboard", token, nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMFAFlow(t *testing.T) {
	app, store := newTestApp(t)
	seedPatient(t, store, "alice")
	token := login(t, app, "alice", "patpass")

	resp, body := doJSON(t, app, "POST", "/mfa/setup", token, fiber.Map{
		"password": "patpass",
	})
	require.Equal(t, 200, resp.StatusCode, "setup: %v", body)
	secret, _ := body["secret"].(string)
	require.NotEmpty(t, secret)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	resp, _ = doJSON(t, app, "POST", "/mfa/verify", token, fiber.Map{"code": code})
	require.Equal(t, 200, resp.StatusCode)

	// Password alone is no longer enough.
	resp, body = doJSON(t, app, "POST", "/login", "", fiber.Map{
		"username": "alice",
		"password": "patpass",
	})
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, true, body["mfa_required"])

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	resp, _ = doJSON(t, app, "POST", "/login", "", fiber.Map{
		"username": "alice",
		"password": "patpass",
		"mfa_code": code,
	})
	assert.Equal(t, 200, resp.StatusCode)

	user, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, user.MFAEnabled)
}

func TestRoleIsNeverTrustedFromToken(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "chameleon", "pw", models.RolePatient)

	// The stored role decides access: the /dashboard identity echo reflects
	// the database row, not whatever the client claims.
	token := login(t, app, "chameleon", "pw")
	resp, body := doJSON(t, app, "GET", "/dashboard", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "patient", user["role"])
}
