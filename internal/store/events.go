package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ConversationEvent is one persisted stream event. Every event emitted
// to a streaming client is also recorded here so a reconnecting UI can
// replay a session's history by polling.
type ConversationEvent struct {
	ID             int64           `json:"id"`
	ConversationID string          `json:"conversationId"`
	Timestamp      time.Time       `json:"time"`
	EventType      string          `json:"type"`
	Data           json.RawMessage `json:"data"`
}

// ConversationEventsRepo handles database operations for the event log
type ConversationEventsRepo struct {
	db *sql.DB
}

// NewConversationEventsRepo creates a new event log repository
func NewConversationEventsRepo(db *sql.DB) *ConversationEventsRepo {
	return &ConversationEventsRepo{db: db}
}

// InsertEvent inserts a new conversation event into the database
func (r *ConversationEventsRepo) InsertEvent(ctx context.Context, event *ConversationEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	query := `
		INSERT INTO conversation_events (conversation_id, ts, event_type, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		event.ConversationID,
		event.Timestamp,
		event.EventType,
		event.Data,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to insert conversation event: %w", err)
	}

	return nil
}

// ListEventsCursor represents pagination cursor for events
type ListEventsCursor struct {
	Since *time.Time `json:"since,omitempty"`
	Limit int        `json:"limit"`
}

// ListEvents retrieves events for a conversation with optional
// cursor-based pagination, oldest first.
func (r *ConversationEventsRepo) ListEvents(ctx context.Context, conversationID string, cursor *ListEventsCursor) ([]*ConversationEvent, error) {
	query := `
		SELECT id, conversation_id, ts, event_type, data
		FROM conversation_events
		WHERE conversation_id = $1
	`
	args := []interface{}{conversationID}
	argCount := 1

	if cursor != nil && cursor.Since != nil {
		argCount++
		query += fmt.Sprintf(" AND ts > $%d", argCount)
		args = append(args, *cursor.Since)
	}

	query += " ORDER BY ts ASC, id ASC"

	if cursor != nil && cursor.Limit > 0 {
		argCount++
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, cursor.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation events: %w", err)
	}
	defer rows.Close()

	var events []*ConversationEvent
	for rows.Next() {
		event := &ConversationEvent{}
		if err := rows.Scan(&event.ID, &event.ConversationID, &event.Timestamp, &event.EventType, &event.Data); err != nil {
			return nil, fmt.Errorf("failed to scan conversation event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// CountEventsByType returns event counts grouped by type for a conversation
func (r *ConversationEventsRepo) CountEventsByType(ctx context.Context, conversationID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*)
		FROM conversation_events
		WHERE conversation_id = $1
		GROUP BY event_type
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversation events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[eventType] = count
	}

	return counts, rows.Err()
}
