package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

func protectedApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	app := fiber.New()
	app.Get("/secure", Protected(store), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id")})
	})
	app.Get("/admin-only", Protected(store), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app, store
}

func seedActiveUser(t *testing.T, store *storage.MemoryStore, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username: "u-" + string(role),
		Password: "hash",
		Name:     "Test User",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestProtectedRejectsMissingOrMalformedToken(t *testing.T) {
	app, _ := protectedApp(t)

	req := httptest.NewRequest("GET", "/secure", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "not-a-bearer")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer bogus.token.here")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestProtectedAcceptsValidToken(t *testing.T) {
	app, store := protectedApp(t)
	u := seedActiveUser(t, store, models.RolePatient)

	token, err := GenerateJWT(u.ID, u.Role)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestProtectedRejectsDeactivatedAccount(t *testing.T) {
	app, store := protectedApp(t)
	u := seedActiveUser(t, store, models.RolePatient)
	token, err := GenerateJWT(u.ID, u.Role)
	require.NoError(t, err)

	p := &models.Patient{UserID: u.ID, IsActive: true}
	require.NoError(t, store.CreatePatient(context.Background(), p))
	require.NoError(t, store.SetPatientActive(context.Background(), p.ID, false))

	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app, store := protectedApp(t)
	patient := seedActiveUser(t, store, models.RolePatient)
	token, err := GenerateJWT(patient.ID, patient.Role)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestFilterSensitiveData(t *testing.T) {
	filtered := filterSensitiveData(`{"username":"alice","password":"pw123","mfa_code":"000000"}`)
	assert.Contains(t, filtered, "alice")
	assert.NotContains(t, filtered, "pw123")
	assert.NotContains(t, filtered, "000000")
	assert.Contains(t, filtered, "[FILTERED]")

	// Non-JSON bodies pass through, truncated if oversized.
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	assert.Contains(t, filterSensitiveData(string(long)), "[truncated]")
}

func TestLogLevelFor(t *testing.T) {
	assert.Equal(t, models.LogLevelSuccess, logLevelFor(201))
	assert.Equal(t, models.LogLevelInfo, logLevelFor(302))
	assert.Equal(t, models.LogLevelWarning, logLevelFor(404))
	assert.Equal(t, models.LogLevelError, logLevelFor(500))
}
