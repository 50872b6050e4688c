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

// AccountPatch is a partial account write. Nil fields are left untouched.
// Password hashing happens in the auth layer; this type only ever carries
// the finished hash.
type AccountPatch struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	IsAdmin        *bool
	ProfilePicture *string
	CoverPicture   *string
}

// CreateAccount inserts a new account. The CreatedAt and LastUpdated fields
// on acct are populated. Returns ErrDuplicate if username or email is
// already taken; the database constraint makes this race-safe against
// concurrent signups.
func (s *Store) CreateAccount(ctx context.Context, acct *model.Account) error {
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.LastUpdated = now

	const q = `INSERT INTO accounts
		(id, username, email, password_hash, is_admin, profile_picture, cover_picture, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, s.rebind(q),
		acct.ID, acct.Username, acct.Email, acct.PasswordHash, acct.IsAdmin,
		acct.ProfilePicture, acct.CoverPicture, acct.CreatedAt, acct.LastUpdated)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetAccountByID returns an account by its id.
func (s *Store) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	var acct model.Account
	if err := s.db.GetContext(ctx, &acct, s.rebind("SELECT * FROM accounts WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acct, nil
}

// GetAccountByUsername returns an account by its unique username.
// Lookup is an exact match on the stored string.
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	var acct model.Account
	if err := s.db.GetContext(ctx, &acct, s.rebind("SELECT * FROM accounts WHERE username = ?"), username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return &acct, nil
}

// GetAccountByEmail returns an account by its unique email.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var acct model.Account
	if err := s.db.GetContext(ctx, &acct, s.rebind("SELECT * FROM accounts WHERE email = ?"), email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &acct, nil
}

// ListAccounts returns all accounts ordered by username.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	var accts []model.Account
	if err := s.db.SelectContext(ctx, &accts, "SELECT * FROM accounts ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accts, nil
}

// UpdateAccount applies the non-nil fields of patch to the account and
// stamps last_updated. Returns the fresh row. Returns ErrNotFound if the id
// does not resolve and ErrDuplicate if a username/email change collides.
//
// MySQL reports zero affected rows for a value-preserving update, so
// existence is established by re-fetching the row rather than by counting
// affected rows.
func (s *Store) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (*model.Account, error) {
	sets := []string{"last_updated = ?"}
	args := []interface{}{time.Now().UTC()}

	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	if patch.IsAdmin != nil {
		add("is_admin", *patch.IsAdmin)
	}
	if patch.ProfilePicture != nil {
		add("profile_picture", *patch.ProfilePicture)
	}
	if patch.CoverPicture != nil {
		add("cover_picture", *patch.CoverPicture)
	}

	q := "UPDATE accounts SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	if _, err := s.db.ExecContext(ctx, s.rebind(q), args...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return s.GetAccountByID(ctx, id)
}

// SetAdmin sets the admin flag for the account with the given username.
// Idempotent: granting to an admin or revoking from a non-admin succeeds.
// Returns ErrNotFound if the username does not exist. Authorization is the
// caller's concern.
func (s *Store) SetAdmin(ctx context.Context, username string, isAdmin bool) (*model.Account, error) {
	acct, err := s.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	const q = "UPDATE accounts SET is_admin = ?, last_updated = ? WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, s.rebind(q), isAdmin, time.Now().UTC(), acct.ID); err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}
	return s.GetAccountByID(ctx, acct.ID)
}

// DeleteAccount removes an account by id.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM accounts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
