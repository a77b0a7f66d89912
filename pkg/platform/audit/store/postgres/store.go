package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "vims/pkg/domain"
	audit "vims/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes an audit event to the audit_events table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	var userID any
	if !event.UserID.IsNil() {
		userID = uuid.UUID(event.UserID)
	}

	query := `
		INSERT INTO audit_events (id, user_id, action, subject, reason, request_id, client_ip, user_agent, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		eventID, userID, event.Action, event.Subject, event.Reason,
		event.RequestID, event.ClientIP, event.UserAgent, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns a user's audit trail, oldest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT id, user_id, action, subject, reason, request_id, client_ip, user_agent, occurred_at
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event audit.Event
			uid   uuid.NullUUID
		)
		if err := rows.Scan(&event.ID, &uid, &event.Action, &event.Subject, &event.Reason,
			&event.RequestID, &event.ClientIP, &event.UserAgent, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if uid.Valid {
			event.UserID = id.UserID(uid.UUID)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
