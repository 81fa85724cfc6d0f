package types

import "time"

// EventType certificate history event type
type EventType string

const (
	EventUpload          EventType = "UPLOAD"
	EventUpdateRAProfile EventType = "UPDATE_RA_PROFILE"
	EventUpdateGroup     EventType = "UPDATE_GROUP"
	EventUpdateOwner     EventType = "UPDATE_OWNER"
	EventUpdate          EventType = "UPDATE" // several attributes at once
	EventDelete          EventType = "DELETE"
	EventUpdateIssuer    EventType = "UPDATE_ISSUER"
	EventComplianceCheck EventType = "COMPLIANCE_CHECK"
	EventRevoke          EventType = "REVOKE"
)

// EventStatus outcome of history event
type EventStatus string

const (
	EventSuccess EventStatus = "SUCCESS"
	EventFailed  EventStatus = "FAILED"
)

// Event certificate history event
type Event struct {
	ID             uint        `json:"-"`
	CertificateID  string      `json:"certificateUuid"`
	Event          EventType   `json:"event"`
	Status         EventStatus `json:"status"`
	Message        string      `json:"message"`
	AdditionalInfo string      `json:"additionalInformation,omitempty"`
	Created        time.Time   `json:"created"`
}

// NewEvent create event for certificate
func NewEvent(certificateID string, event EventType, status EventStatus, message string) *Event {
	return &Event{
		CertificateID: certificateID,
		Event:         event,
		Status:        status,
		Message:       message,
		Created:       time.Now().UTC(),
	}
}

// ChangeMessage format before/after change message
func ChangeMessage(before, after string) string {
	if before == "" {
		before = "undefined"
	}
	if after == "" {
		after = "undefined"
	}
	return before + " -> " + after
}
