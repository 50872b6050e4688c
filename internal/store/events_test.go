package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hearthhq/hearth/internal/model"
)

func testEvent(title string) *model.Event {
	return &model.Event{
		ID:          uuid.NewString(),
		AccountID:   uuid.NewString(),
		Username:    "alice",
		Title:       title,
		Description: "a description",
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := testEvent("Garage Sale")
	if err := s.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	got, err := s.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Title != "Garage Sale" || got.Username != "alice" {
		t.Errorf("got = %+v", got)
	}

	if _, err := s.GetEvent(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestListEvents_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if err := s.CreateEvent(ctx, testEvent(title)); err != nil {
			t.Fatalf("CreateEvent %s: %v", title, err)
		}
		// created_at is the sort key; keep the inserts distinguishable.
		time.Sleep(5 * time.Millisecond)
	}

	events, err := s.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Title != "third" || events[2].Title != "first" {
		t.Errorf("events not newest-first: %q, %q, %q",
			events[0].Title, events[1].Title, events[2].Title)
	}
}

func TestUpdateEvent_PartialPatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := testEvent("Garage Sale")
	if err := s.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	title := "Moving Sale"
	got, err := s.UpdateEvent(ctx, ev.ID, model.EventUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if got.Title != title {
		t.Errorf("title = %q, want %q", got.Title, title)
	}
	if got.Description != ev.Description {
		t.Error("description changed by a title-only patch")
	}

	if _, err := s.UpdateEvent(ctx, "no-such-id", model.EventUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := testEvent("Garage Sale")
	if err := s.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if err := s.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := s.GetEvent(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted event still resolves: err = %v", err)
	}
	if err := s.DeleteEvent(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
