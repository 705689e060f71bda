package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

// Handler bundles the HTTP handlers around the persistence layer.
type Handler struct {
	store storage.Store
}

func New(store storage.Store) *Handler {
	return &Handler{store: store}
}

// fail maps a storage/domain error onto the HTTP error contract.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "record not found"})
	case errors.Is(err, models.ErrDuplicate):
		return c.Status(409).JSON(fiber.Map{"error": "record already exists"})
	case errors.Is(err, models.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "access denied"})
	case errors.Is(err, models.ErrInvalidCredentials):
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}

func currentUserID(c *fiber.Ctx) int {
	id, _ := c.Locals("user_id").(int)
	return id
}

// parseDate reads a YYYY-MM-DD form value. Dates are interpreted in local
// time so they compare against today() on the same calendar.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", models.ErrValidation, s)
	}
	return t, nil
}

// validClockTime reports whether s is a well-formed HH:MM value.
func validClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func today() time.Time {
	return storage.DateOnly(time.Now())
}
