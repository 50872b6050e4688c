package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hearthhq/hearth/internal/model"
	"github.com/hearthhq/hearth/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open("sqlite", "") // in-memory
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func strPtr(s string) *string { return &s }

func TestRegister_Success(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, "alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acct.ID == "" {
		t.Error("expected a generated account id")
	}
	if acct.IsAdmin {
		t.Error("new accounts must not start with admin capability")
	}
	if acct.PasswordHash == "hunter22" {
		t.Error("password stored in plaintext")
	}
	if !CheckPassword("hunter22", acct.PasswordHash) {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestRegister_EmptyFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@example.com", "pw"},
		{"missing email", "alice", "", "pw"},
		{"missing password", "alice", "a@example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateUsernameAndEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "pw1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(ctx, "alice", "other@example.com", "pw2")
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate username: err = %v, want ErrDuplicate", err)
	}

	_, err = svc.Register(ctx, "bob", "alice@example.com", "pw3")
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate email: err = %v, want ErrDuplicate", err)
	}
}

func TestVerify_Success(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "secretpw"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	acct, err := svc.Verify(ctx, "alice", "secretpw")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if acct.Username != "alice" {
		t.Errorf("username = %q, want %q", acct.Username, "alice")
	}
}

func TestVerify_FlattensFailureReasons(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "secretpw"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Unknown username and wrong password must be indistinguishable to the
	// caller so the error carries no identity-enumeration signal.
	_, errUnknown := svc.Verify(ctx, "nobody", "secretpw")
	_, errWrongPw := svc.Verify(ctx, "alice", "wrongpw")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown username: err = %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("failure messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestUpdate_NoFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err = svc.Update(ctx, acct.ID, model.AccountUpdate{}, false)
	if !errors.Is(err, ErrNoFields) {
		t.Errorf("err = %v, want ErrNoFields", err)
	}
}

func TestUpdate_HashesNewPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, "alice", "alice@example.com", "oldpw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := svc.Update(ctx, acct.ID, model.AccountUpdate{Password: strPtr("newpw")}, false)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PasswordHash == "newpw" {
		t.Error("new password stored in plaintext")
	}

	if _, err := svc.Verify(ctx, "alice", "newpw"); err != nil {
		t.Errorf("Verify with new password: %v", err)
	}
	if _, err := svc.Verify(ctx, "alice", "oldpw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted after change: err = %v", err)
	}
}

func TestUpdate_DiscardsAdminFlagForNonAdmins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	admin := true
	newEmail := "new@example.com"

	// Non-admin caller: the isAdmin field is dropped, the rest applies.
	updated, err := svc.Update(ctx, acct.ID, model.AccountUpdate{
		Email:   &newEmail,
		IsAdmin: &admin,
	}, false)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsAdmin {
		t.Error("non-admin caller escalated itself to admin")
	}
	if updated.Email != newEmail {
		t.Errorf("email = %q, want %q", updated.Email, newEmail)
	}

	// Non-admin caller with ONLY the isAdmin field: nothing remains.
	_, err = svc.Update(ctx, acct.ID, model.AccountUpdate{IsAdmin: &admin}, false)
	if !errors.Is(err, ErrNoFields) {
		t.Errorf("isAdmin-only update by non-admin: err = %v, want ErrNoFields", err)
	}

	// Admin caller: the field is honored.
	updated, err = svc.Update(ctx, acct.ID, model.AccountUpdate{IsAdmin: &admin}, true)
	if err != nil {
		t.Fatalf("Update as admin: %v", err)
	}
	if !updated.IsAdmin {
		t.Error("admin caller could not set the admin flag")
	}
}

func TestUpdate_UnknownAccount(t *testing.T) {
	svc := newTestService(t)

	email := "x@example.com"
	_, err := svc.Update(context.Background(), "no-such-id", model.AccountUpdate{Email: &email}, false)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetAdminBatch_PartialFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, u := range []string{"alice", "bob"} {
		if _, err := svc.Register(ctx, u, u+"@example.com", "pw"); err != nil {
			t.Fatalf("Register %s: %v", u, err)
		}
	}

	// One target does not exist; the other two must still be processed.
	res := svc.SetAdminBatch(ctx, []string{"alice", "ghost", "bob"}, true)

	if res.Updated != 2 {
		t.Errorf("Updated = %d, want 2", res.Updated)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(res.Failures))
	}
	if res.Failures[0].Username != "ghost" {
		t.Errorf("failed target = %q, want %q", res.Failures[0].Username, "ghost")
	}

	for _, u := range []string{"alice", "bob"} {
		acct, err := svc.Verify(ctx, u, "pw")
		if err != nil {
			t.Fatalf("Verify %s: %v", u, err)
		}
		if !acct.IsAdmin {
			t.Errorf("%s should have admin after batch grant", u)
		}
	}
}

func TestSetAdminBatch_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Granting twice is not an error and counts as an update both times.
	for i := 0; i < 2; i++ {
		res := svc.SetAdminBatch(ctx, []string{"alice"}, true)
		if res.Updated != 1 || len(res.Failures) != 0 {
			t.Errorf("pass %d: Updated = %d, Failures = %d", i, res.Updated, len(res.Failures))
		}
	}

	res := svc.SetAdminBatch(ctx, []string{"alice"}, false)
	if res.Updated != 1 {
		t.Errorf("revoke: Updated = %d, want 1", res.Updated)
	}
	acct, err := svc.Verify(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if acct.IsAdmin {
		t.Error("admin flag still set after revoke")
	}
}
