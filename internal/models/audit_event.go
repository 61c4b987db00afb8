package models

import "time"

// AuditEvent is a record of an administrative or user-facing action.
type AuditEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // e.g. "user_registered", "user_deleted"
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
