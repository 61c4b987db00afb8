package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/dcastane/regportal-be/internal/models"
	ws "github.com/dcastane/regportal-be/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Audit event types.
const (
	EventUserRegistered = "user_registered"
	EventUserDeleted    = "user_deleted"
)

// AuditServiceProvider defines the interface for audit event services.
type AuditServiceProvider interface {
	Record(ctx context.Context, eventType, message string, userID *string)
	Recent(ctx context.Context, limit int) ([]models.AuditEvent, error)
}

// AuditService stores audit events and pushes them to connected admin clients.
type AuditService struct {
	db  *sql.DB
	hub *ws.Hub
}

// NewAuditService creates a new AuditService. The hub may be nil, in which
// case events are only persisted.
func NewAuditService(db *sql.DB, hub *ws.Hub) *AuditService {
	return &AuditService{db: db, hub: hub}
}

// Record persists an audit event and broadcasts it. Auditing is a side
// effect of the primary operation, so failures are logged and swallowed.
func (s *AuditService) Record(ctx context.Context, eventType, message string, userID *string) {
	event := models.AuditEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_events (id, type, message, user_id, created_at) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Message, event.UserID, event.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record audit event")
		return
	}

	if s.hub == nil {
		return
	}
	data, err := json.Marshal(ws.Message{Action: event.Type, Payload: event})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode audit event for broadcast")
		return
	}
	select {
	case s.hub.Broadcast <- data:
	default:
		log.Warn().Str("event_type", eventType).Msg("Audit broadcast channel full, dropping event")
	}
}

// Recent retrieves the most recent audit events.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, message, user_id, created_at FROM audit_events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.AuditEvent{}
	for rows.Next() {
		var event models.AuditEvent
		if err := rows.Scan(&event.ID, &event.Type, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
