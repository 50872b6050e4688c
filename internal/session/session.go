// Package session binds opaque client-held tokens to account identities.
// The Manager owns the session lifecycle; account records stay owned by the
// auth layer and are re-fetched live on every resolution.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/hearthhq/hearth/internal/model"
	"github.com/hearthhq/hearth/internal/store"
)

// ErrUnauthenticated is returned when a token is absent, malformed, expired,
// or no longer resolves to an existing account.
var ErrUnauthenticated = errors.New("unauthenticated")

// Store is the backing table of live sessions. Implementations must be safe
// for concurrent use; the store is the only shared mutable state in the
// session layer.
type Store interface {
	// Put records a token → accountID binding.
	Put(token, accountID string)
	// Get returns the bound accountID. Implementations may refresh a
	// sliding expiry here, but must not otherwise mutate session state.
	Get(token string) (accountID string, ok bool)
	// Delete removes a binding. Deleting an unknown token is a no-op.
	Delete(token string)
}

// AccountLookup fetches the live account for an id from the durable store.
type AccountLookup func(ctx context.Context, id string) (*model.Account, error)

// Manager issues, resolves, and ends sessions against an injected Store.
// It holds no global state; its lifecycle is the process's.
type Manager struct {
	store  Store
	lookup AccountLookup
}

// NewManager creates a session manager over the given store and account
// lookup.
func NewManager(st Store, lookup AccountLookup) *Manager {
	return &Manager{store: st, lookup: lookup}
}

// Begin allocates a fresh opaque token bound to the account's id. Multiple
// concurrent sessions per account are permitted.
func (m *Manager) Begin(ctx context.Context, acct *model.Account) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	m.store.Put(token, acct.ID)
	return token, nil
}

// Resolve maps a token back to the live account, re-fetched from the
// durable store so role or profile changes take effect on the very next
// request. A token whose account has since been deleted is dropped and
// reported as ErrUnauthenticated.
func (m *Manager) Resolve(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	accountID, ok := m.store.Get(token)
	if !ok {
		return nil, ErrUnauthenticated
	}

	acct, err := m.lookup(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.store.Delete(token)
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return acct, nil
}

// End removes the session for token. Idempotent: ending an already-ended or
// unknown session is not an error.
func (m *Manager) End(ctx context.Context, token string) {
	m.store.Delete(token)
}

// newToken returns a 256-bit random token in hex. The token is opaque to
// the client and meaningful only to the session store.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
