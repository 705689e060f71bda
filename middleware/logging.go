package middleware

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hmsdev/hospital-backend/models"
	"github.com/hmsdev/hospital-backend/storage"
)

const maxLoggedBody = 1000

// RequestLogging records every request to the request_logs table. Persistence
// happens off the request path so a slow insert never delays the response.
func RequestLogging(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		entry := buildLogEntry(c, int(time.Since(start).Milliseconds()))
		go func() {
			if err := store.SaveRequestLog(context.Background(), &entry); err != nil {
				log.Printf("request log write failed: %v", err)
			}
		}()
		return err
	}
}

func buildLogEntry(c *fiber.Ctx, responseTime int) models.RequestLog {
	entry := models.RequestLog{
		Method:       c.Method(),
		Path:         c.Path(),
		StatusCode:   c.Response().StatusCode(),
		ResponseTime: responseTime,
		IP:           clientIP(c),
		UserAgent:    c.Get("User-Agent"),
		LogLevel:     logLevelFor(c.Response().StatusCode()),
	}
	if username, ok := c.Locals("username").(string); ok {
		entry.Username = username
	}
	if role, ok := c.Locals("user_role").(models.Role); ok {
		entry.Role = string(role)
	}
	switch c.Method() {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if body := string(c.Body()); body != "" {
			entry.Body = filterSensitiveData(body)
		}
	}
	return entry
}

func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}

var sensitiveFields = []string{"password", "mfa_code", "secret", "token"}

// filterSensitiveData masks credential fields before a body is persisted.
// Non-JSON bodies are only truncated.
func filterSensitiveData(body string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return truncate(body)
	}
	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[FILTERED]"
		}
	}
	filtered, _ := json.Marshal(data)
	return truncate(string(filtered))
}

func truncate(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "...[truncated]"
	}
	return s
}

func logLevelFor(statusCode int) string {
	switch {
	case statusCode >= 500:
		return models.LogLevelError
	case statusCode >= 400:
		return models.LogLevelWarning
	case statusCode >= 300:
		return models.LogLevelInfo
	case statusCode >= 200:
		return models.LogLevelSuccess
	default:
		return models.LogLevelInfo
	}
}
