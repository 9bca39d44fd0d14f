package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChecklistItem is one todo entry owned by a user.
type ChecklistItem struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
}

// ChecklistRepo handles database operations for checklist items
type ChecklistRepo struct {
	pool *pgxpool.Pool
}

// NewChecklistRepo creates a new checklist repository
func NewChecklistRepo(pool *pgxpool.Pool) *ChecklistRepo {
	return &ChecklistRepo{pool: pool}
}

// AddItem inserts a new checklist item for a user
func (r *ChecklistRepo) AddItem(ctx context.Context, username, text string) (*ChecklistItem, error) {
	item := &ChecklistItem{Username: username, Text: text}

	query := `
		INSERT INTO checklist_items (username, text, done, pinned, created_at)
		VALUES ($1, $2, false, false, now())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, username, text).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert checklist item: %w", err)
	}

	return item, nil
}

// ListItems returns a user's checklist items, pinned first, newest next
func (r *ChecklistRepo) ListItems(ctx context.Context, username string) ([]*ChecklistItem, error) {
	query := `
		SELECT id, username, text, done, pinned, created_at
		FROM checklist_items
		WHERE username = $1
		ORDER BY pinned DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []*ChecklistItem
	for rows.Next() {
		item := &ChecklistItem{}
		if err := rows.Scan(&item.ID, &item.Username, &item.Text, &item.Done, &item.Pinned, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// MarkDone sets the done flag on an item that matches the given text
func (r *ChecklistRepo) MarkDone(ctx context.Context, username, text string, done bool) (*ChecklistItem, error) {
	item := &ChecklistItem{}

	query := `
		UPDATE checklist_items
		SET done = $3
		WHERE username = $1 AND text ILIKE '%' || $2 || '%'
		RETURNING id, username, text, done, pinned, created_at
	`

	err := r.pool.QueryRow(ctx, query, username, text, done).
		Scan(&item.ID, &item.Username, &item.Text, &item.Done, &item.Pinned, &item.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no checklist item matching %q", text)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}

	return item, nil
}

// PinItem sets the pinned flag on an item that matches the given text
func (r *ChecklistRepo) PinItem(ctx context.Context, username, text string, pinned bool) (*ChecklistItem, error) {
	item := &ChecklistItem{}

	query := `
		UPDATE checklist_items
		SET pinned = $3
		WHERE username = $1 AND text ILIKE '%' || $2 || '%'
		RETURNING id, username, text, done, pinned, created_at
	`

	err := r.pool.QueryRow(ctx, query, username, text, pinned).
		Scan(&item.ID, &item.Username, &item.Text, &item.Done, &item.Pinned, &item.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no checklist item matching %q", text)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}

	return item, nil
}

// DeleteItem removes an item that matches the given text
func (r *ChecklistRepo) DeleteItem(ctx context.Context, username, text string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM checklist_items
		WHERE username = $1 AND text ILIKE '%' || $2 || '%'
	`, username, text)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no checklist item matching %q", text)
	}

	return nil
}
