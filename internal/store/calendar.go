package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CalendarEvent is one scheduled entry owned by a user.
type CalendarEvent struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarRepo handles database operations for calendar events
type CalendarRepo struct {
	pool *pgxpool.Pool
}

// NewCalendarRepo creates a new calendar repository
func NewCalendarRepo(pool *pgxpool.Pool) *CalendarRepo {
	return &CalendarRepo{pool: pool}
}

// CreateEvent inserts a new calendar event for a user
func (r *CalendarRepo) CreateEvent(ctx context.Context, ev *CalendarEvent) (*CalendarEvent, error) {
	query := `
		INSERT INTO calendar_events (username, title, starts_at, location, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, ev.Username, ev.Title, ev.StartsAt, ev.Location, ev.Notes).
		Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert calendar event: %w", err)
	}

	return ev, nil
}

// ListEvents returns a user's events within a time window, earliest first
func (r *CalendarRepo) ListEvents(ctx context.Context, username string, from, to time.Time) ([]*CalendarEvent, error) {
	query := `
		SELECT id, username, title, starts_at, location, notes, created_at
		FROM calendar_events
		WHERE username = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at ASC
	`

	rows, err := r.pool.Query(ctx, query, username, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	defer rows.Close()

	var events []*CalendarEvent
	for rows.Next() {
		ev := &CalendarEvent{}
		if err := rows.Scan(&ev.ID, &ev.Username, &ev.Title, &ev.StartsAt, &ev.Location, &ev.Notes, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// DeleteEvent removes an event that matches the given title
func (r *CalendarRepo) DeleteEvent(ctx context.Context, username, title string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM calendar_events
		WHERE username = $1 AND title ILIKE '%' || $2 || '%'
	`, username, title)
	if err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no calendar event matching %q", title)
	}

	return nil
}
