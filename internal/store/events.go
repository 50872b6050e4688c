package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hearthhq/hearth/internal/model"
)

// CreateEvent inserts a new event. CreatedAt and LastUpdated are populated.
func (s *Store) CreateEvent(ctx context.Context, ev *model.Event) error {
	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.LastUpdated = now

	const q = `INSERT INTO events
		(id, account_id, username, title, description, image, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, s.rebind(q),
		ev.ID, ev.AccountID, ev.Username, ev.Title, ev.Description, ev.Image,
		ev.CreatedAt, ev.LastUpdated)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetEvent returns an event by id.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var ev model.Event
	if err := s.db.GetContext(ctx, &ev, s.rebind("SELECT * FROM events WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &ev, nil
}

// ListEvents returns all events, newest first.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := s.db.SelectContext(ctx, &events, "SELECT * FROM events ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// UpdateEvent applies the non-nil fields of upd to the event and stamps
// last_updated. Returns ErrNotFound if the id does not exist.
func (s *Store) UpdateEvent(ctx context.Context, id string, upd model.EventUpdate) (*model.Event, error) {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return nil, err
	}

	sets := []string{"last_updated = ?"}
	args := []interface{}{time.Now().UTC()}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *upd.Image)
	}

	q := "UPDATE events SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	if _, err := s.db.ExecContext(ctx, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetEvent(ctx, id)
}

// DeleteEvent removes an event by id.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM events WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
