package domain

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a user-facing, non-blocking message about the outcome of
// an operation.
type Notification struct {
	Severity    Severity
	Title       string
	Description string
	Time        time.Time
}
