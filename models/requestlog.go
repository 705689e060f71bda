package models

import "time"

// RequestLog is one persisted HTTP request record.
type RequestLog struct {
	ID           int       `json:"id" db:"id"`
	Method       string    `json:"method" db:"method"`
	Path         string    `json:"path" db:"path"`
	StatusCode   int       `json:"status_code" db:"status_code"`
	ResponseTime int       `json:"response_time" db:"response_time"` // ms
	IP           string    `json:"ip" db:"ip"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	Username     string    `json:"username" db:"username"`
	Role         string    `json:"role" db:"role"`
	Body         string    `json:"body" db:"body"`
	LogLevel     string    `json:"log_level" db:"log_level"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

const (
	LogLevelInfo    = "info"
	LogLevelSuccess = "success"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)
