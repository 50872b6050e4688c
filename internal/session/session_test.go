package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hearthhq/hearth/internal/model"
	"github.com/hearthhq/hearth/internal/store"
)

// fakeAccounts is an in-memory AccountLookup backend.
type fakeAccounts map[string]*model.Account

func (f fakeAccounts) lookup(ctx context.Context, id string) (*model.Account, error) {
	if acct, ok := f[id]; ok {
		return acct, nil
	}
	return nil, store.ErrNotFound
}

func TestBeginAndResolve(t *testing.T) {
	accounts := fakeAccounts{"id-1": {ID: "id-1", Username: "alice"}}
	mgr := NewManager(NewMemoryStore(0), accounts.lookup)
	ctx := context.Background()

	token, err := mgr.Begin(ctx, accounts["id-1"])
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	acct, err := mgr.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if acct.Username != "alice" {
		t.Errorf("username = %q, want %q", acct.Username, "alice")
	}
}

func TestResolve_SeesLiveAccountState(t *testing.T) {
	accounts := fakeAccounts{"id-1": {ID: "id-1", Username: "alice", IsAdmin: false}}
	mgr := NewManager(NewMemoryStore(0), accounts.lookup)
	ctx := context.Background()

	token, err := mgr.Begin(ctx, accounts["id-1"])
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	// A role change after the session began must be visible on the very
	// next resolution; nothing about the account is frozen into the token.
	accounts["id-1"].IsAdmin = true

	acct, err := mgr.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !acct.IsAdmin {
		t.Error("role change not visible through an existing session")
	}
}

func TestResolve_Unauthenticated(t *testing.T) {
	accounts := fakeAccounts{}
	mgr := NewManager(NewMemoryStore(0), accounts.lookup)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-real-token"} {
		if _, err := mgr.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Resolve(%q): err = %v, want ErrUnauthenticated", token, err)
		}
	}
}

func TestResolve_DropsOrphanedSession(t *testing.T) {
	accounts := fakeAccounts{"id-1": {ID: "id-1", Username: "alice"}}
	memStore := NewMemoryStore(0)
	mgr := NewManager(memStore, accounts.lookup)
	ctx := context.Background()

	token, err := mgr.Begin(ctx, accounts["id-1"])
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	// Deleting the account orphans the session; resolving it must both
	// fail and purge the dangling token.
	delete(accounts, "id-1")

	if _, err := mgr.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
	if memStore.Len() != 0 {
		t.Errorf("orphaned session still in store, Len = %d", memStore.Len())
	}
}

func TestEnd_Idempotent(t *testing.T) {
	accounts := fakeAccounts{"id-1": {ID: "id-1", Username: "alice"}}
	mgr := NewManager(NewMemoryStore(0), accounts.lookup)
	ctx := context.Background()

	token, err := mgr.Begin(ctx, accounts["id-1"])
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	mgr.End(ctx, token)
	if _, err := mgr.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("resolved an ended session: err = %v", err)
	}

	// Ending again, or ending garbage, must not panic or error.
	mgr.End(ctx, token)
	mgr.End(ctx, "never-issued")
}

func TestTokensAreUnique(t *testing.T) {
	accounts := fakeAccounts{"id-1": {ID: "id-1"}}
	mgr := NewManager(NewMemoryStore(0), accounts.lookup)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := mgr.Begin(ctx, accounts["id-1"])
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token issued: %s", token)
		}
		seen[token] = true
	}
}

func TestMemoryStore_SlidingExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	memStore := NewMemoryStore(time.Minute)
	memStore.now = func() time.Time { return now }

	memStore.Put("tok", "id-1")

	// Touch the session just before expiry; the deadline slides forward.
	now = now.Add(50 * time.Second)
	if _, ok := memStore.Get("tok"); !ok {
		t.Fatal("session expired before its ttl")
	}

	// 50s past the original deadline but within the refreshed one.
	now = now.Add(50 * time.Second)
	if _, ok := memStore.Get("tok"); !ok {
		t.Fatal("sliding expiry did not extend the session")
	}

	// Idle past the ttl: gone, and purged from the map.
	now = now.Add(2 * time.Minute)
	if _, ok := memStore.Get("tok"); ok {
		t.Fatal("idle session did not expire")
	}
	if memStore.Len() != 0 {
		t.Errorf("expired session not purged, Len = %d", memStore.Len())
	}
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	memStore := NewMemoryStore(0)
	memStore.now = func() time.Time { return now }

	memStore.Put("tok", "id-1")
	now = now.Add(10 * 365 * 24 * time.Hour)
	if _, ok := memStore.Get("tok"); !ok {
		t.Error("session with zero ttl expired")
	}
}
