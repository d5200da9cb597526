// Package messaging defines the subjects hawkline publishes on the message
// bus. Subjects follow the pattern {service}.{domain}.{event}.
package messaging

const (
	// SubjectCompositeDetected carries composite signals emitted by
	// correlation rules.
	SubjectCompositeDetected = "hawkline.signals.composite"

	// SubjectAlertTriggered carries triggered alerts.
	SubjectAlertTriggered = "hawkline.alerts.triggered"
)
