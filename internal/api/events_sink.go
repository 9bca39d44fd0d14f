package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/alienx/bianca/internal/store"
	"github.com/alienx/bianca/internal/stream"
)

// EventSink records stream events as they are emitted to a client, so
// a reconnecting UI can replay the session by polling.
type EventSink interface {
	RecordEvent(ctx context.Context, conversationID string, ev *stream.Event) error
}

// DatabaseEventSink implements EventSink on the conversation event log.
type DatabaseEventSink struct {
	repo *store.ConversationEventsRepo
}

// NewDatabaseEventSink creates a new database event sink.
func NewDatabaseEventSink(db *sql.DB) *DatabaseEventSink {
	return &DatabaseEventSink{
		repo: store.NewConversationEventsRepo(db),
	}
}

// RecordEvent persists one stream event.
func (s *DatabaseEventSink) RecordEvent(ctx context.Context, conversationID string, ev *stream.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	eventType := string(ev.Type)
	if eventType == "" {
		eventType = string(stream.EventError)
	}

	return s.repo.InsertEvent(ctx, &store.ConversationEvent{
		ConversationID: conversationID,
		EventType:      eventType,
		Data:           data,
	})
}

// recordEvent writes to the sink when one is configured. Persistence
// failures are logged and never interrupt the live stream.
func recordEvent(ctx context.Context, sink EventSink, conversationID string, ev *stream.Event) {
	if sink == nil {
		return
	}
	if err := sink.RecordEvent(ctx, conversationID, ev); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to persist stream event")
	}
}
