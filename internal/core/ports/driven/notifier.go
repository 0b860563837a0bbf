package driven

// Severity ranks a notification.
type Severity string

// Available severities.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is a short user-facing message.
type Notification struct {
	Title    string
	Message  string
	Severity Severity
}

// Notifier surfaces notifications to the user. Delivery is fire-and-forget.
type Notifier interface {
	Notify(n Notification)
}
