package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hearthhq/hearth/internal/model"
	"github.com/hearthhq/hearth/internal/store"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password. Callers must surface one identical message for both so
	// the response carries no identity-enumeration signal; the internal
	// reason is logged server-side only.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoFields is returned when an update carries no caller-supplied
	// fields.
	ErrNoFields = errors.New("no fields provided for update")
)

// Service owns account credentials: it is the only writer of account
// records and the only caller of the password hasher.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService creates an auth service over the given record store.
func NewService(st *store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Register creates a new account with a hashed password and no admin
// capability. Returns ErrValidation for empty input and store.ErrDuplicate
// when username or email is taken; uniqueness is enforced by the database
// so concurrent registrations cannot both succeed.
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.Account, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	acct := &model.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
	}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// Verify checks a username/password pair against the stored credentials.
// Unknown usernames and wrong passwords both come back as
// ErrInvalidCredentials; the distinction exists only in the server-side log.
func (s *Service) Verify(ctx context.Context, username, password string) (*model.Account, error) {
	acct, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("login rejected", "username", username, "reason", "unknown identity")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, acct.PasswordHash) {
		s.logger.Debug("login rejected", "username", username, "reason", "bad credential")
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// Lookup fetches the live account for an id. Used by the session layer to
// re-resolve identity on every request.
func (s *Service) Lookup(ctx context.Context, id string) (*model.Account, error) {
	return s.store.GetAccountByID(ctx, id)
}

// Update applies a partial account mutation. Nil fields are untouched; a
// password field is hashed before it reaches the store and the raw value is
// never logged. callerIsAdmin gates the isAdmin field: without admin
// capability it is silently discarded, so a generic update endpoint cannot
// be used for privilege self-escalation.
func (s *Service) Update(ctx context.Context, accountID string, upd model.AccountUpdate, callerIsAdmin bool) (*model.Account, error) {
	if !callerIsAdmin {
		upd.IsAdmin = nil
	}
	if upd.IsEmpty() {
		return nil, ErrNoFields
	}

	patch := store.AccountPatch{
		Username:       upd.Username,
		Email:          upd.Email,
		IsAdmin:        upd.IsAdmin,
		ProfilePicture: upd.ProfilePicture,
		CoverPicture:   upd.CoverPicture,
	}
	if upd.Password != nil {
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	return s.store.UpdateAccount(ctx, accountID, patch)
}

// BatchFailure records one failed target of a bulk role change.
type BatchFailure struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// BatchResult is the aggregate outcome of a bulk role change. Partial
// failure is first-class: Updated counts the successes and Failures lists
// the rest.
type BatchResult struct {
	Updated  int            `json:"updated"`
	Failures []BatchFailure `json:"-"`
}

// SetAdminBatch grants or revokes the admin flag for each target username
// independently. A failure on one target never aborts the remaining
// targets; failures are logged and collected, not raised. Caller-side
// authorization (admin only) is enforced by the middleware chain, not here.
func (s *Service) SetAdminBatch(ctx context.Context, usernames []string, grant bool) BatchResult {
	var res BatchResult
	for _, username := range usernames {
		if _, err := s.store.SetAdmin(ctx, username, grant); err != nil {
			s.logger.Warn("bulk role change failed for target",
				"username", username, "grant", grant, "error", err)
			res.Failures = append(res.Failures, BatchFailure{Username: username, Reason: err.Error()})
			continue
		}
		res.Updated++
	}
	return res
}
