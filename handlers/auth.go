package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/hmsdev/hospital-backend/middleware"
	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

const totpIssuer = "Hospital Management System"

// Register creates a patient account. Doctors and admins are only created
// through the admin panel.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Username == "" || req.Password == "" ||
		req.Gender == "" || req.DOB == "" || req.BloodGroup == "" || req.Address == "" {
		return c.Status(400).JSON(fiber.Map{"error": "all fields are required"})
	}
	dob, err := parseDate(req.DOB)
	if err != nil {
		return fail(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not process password"})
	}

	user := models.User{
		Username: req.Username,
		Password: string(hash),
		Name:     req.Name,
		Role:     models.RolePatient,
		IsActive: true,
	}
	err = h.store.InTx(c.Context(), func(tx storage.Store) error {
		if err := tx.CreateUser(c.Context(), &user); err != nil {
			return err
		}
		patient := models.Patient{
			UserID:     user.ID,
			Gender:     req.Gender,
			DOB:        &dob,
			BloodGroup: req.BloodGroup,
			Address:    req.Address,
			IsActive:   true,
		}
		return tx.CreatePatient(c.Context(), &patient)
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return c.Status(409).JSON(fiber.Map{"error": "username is already taken"})
		}
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "registration successful, you can now log in",
		"user":    user.Response(),
	})
}

// Login checks credentials (and the TOTP code when MFA is on) and returns a
// signed token plus the dashboard the client should land on.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username and password are required"})
	}

	user, err := h.store.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(401).JSON(fiber.Map{"error": "invalid username or password"})
		}
		return fail(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid username or password"})
	}
	if !user.IsActive {
		return c.Status(403).JSON(fiber.Map{"error": "account is deactivated, contact the administrator"})
	}

	if user.MFAEnabled {
		if req.MFACode == "" {
			return c.Status(401).JSON(fiber.Map{
				"error":        "mfa code required",
				"mfa_required": true,
			})
		}
		if !totp.Validate(req.MFACode, user.MFASecret) {
			return c.Status(401).JSON(fiber.Map{"error": "invalid mfa code"})
		}
	}

	token, err := middleware.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not generate token"})
	}

	return c.JSON(models.LoginResponse{
		Token:    token,
		User:     user.Response(),
		Redirect: "/" + string(user.Role) + "/dashboard",
	})
}

// Logout exists for client symmetry; tokens are stateless so there is nothing
// to revoke server-side.
func (h *Handler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Me echoes the authenticated identity.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.store.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user.Response()})
}

// MFASetup generates a TOTP secret for the account. The secret only becomes
// active after MFAVerify confirms a valid code.
func (h *Handler) MFASetup(c *fiber.Ctx) error {
	var req models.MFASetupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := h.store.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid password"})
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not generate mfa secret"})
	}
	if err := h.store.SetUserMFA(c.Context(), user.ID, false, key.Secret()); err != nil {
		return fail(c, err)
	}

	return c.JSON(models.MFASetupResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
	})
}

// MFAVerify confirms the first TOTP code and switches MFA on.
func (h *Handler) MFAVerify(c *fiber.Ctx) error {
	var req models.MFAVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := h.store.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if user.MFASecret == "" {
		return c.Status(400).JSON(fiber.Map{"error": "mfa setup has not been started"})
	}
	if !totp.Validate(req.Code, user.MFASecret) {
		return c.Status(401).JSON(fiber.Map{"error": "invalid mfa code"})
	}
	if err := h.store.SetUserMFA(c.Context(), user.ID, true, user.MFASecret); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "mfa enabled"})
}

// MFADisable turns MFA off after re-checking the password.
func (h *Handler) MFADisable(c *fiber.Ctx) error {
	var req models.MFASetupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := h.store.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid password"})
	}
	if err := h.store.SetUserMFA(c.Context(), user.ID, false, ""); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "mfa disabled"})
}
