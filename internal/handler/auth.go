package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hearthhq/hearth/internal/auth"
	"github.com/hearthhq/hearth/internal/model"
	"github.com/hearthhq/hearth/internal/server/middleware"
	"github.com/hearthhq/hearth/internal/session"
	"github.com/hearthhq/hearth/internal/store"
)

// AuthHandler serves the account and session endpoints: signup, login,
// logout, session check, profile update, and bulk role changes.
type AuthHandler struct {
	auth     *auth.Service
	sessions *session.Manager
	logger   *slog.Logger

	cookieName   string
	secureCookie bool
}

// NewAuthHandler creates an AuthHandler. cookieName is the session cookie;
// secureCookie marks it Secure for TLS-fronted deployments.
func NewAuthHandler(authSvc *auth.Service, sessions *session.Manager, logger *slog.Logger, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         authSvc,
		sessions:     sessions,
		logger:       logger,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup registers a new account.
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	acct, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrValidation):
		writeError(w, http.StatusBadRequest, "All fields are required.")
		return
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "Username or email already exists.")
		return
	default:
		h.logger.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully.",
		"user":    acct,
	})
}

// Login verifies credentials and establishes a session. A wrong password and
// an unknown username return the identical response; the internal reason is
// only logged.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	acct, err := h.auth.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	token, err := h.sessions.Begin(r.Context(), acct)
	if err != nil {
		h.logger.Error("begin session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful.",
		"user":    acct,
	})
}

// Logout ends the session carried by the cookie and clears it. Ending an
// already-ended or unknown session is not an error.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookieName); err == nil {
		h.sessions.End(r.Context(), c.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logout successful.",
	})
}

// IsLoggedIn reports the account bound to the current session. The route is
// behind RequireSession, so reaching the handler means the session resolved.
// GET /auth/isLoggedIn
func (h *AuthHandler) IsLoggedIn(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	acct, err := h.auth.Lookup(r.Context(), principal.AccountID)
	if err != nil {
		h.logger.Error("session account lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": acct,
	})
}

// Update applies a partial update to the caller's own account. An isAdmin
// field in the payload is discarded unless the caller already holds admin.
// PUT /auth/update
func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var upd model.AccountUpdate
	if err := readJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	acct, err := h.auth.Update(r.Context(), principal.AccountID, upd, principal.IsAdmin)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrNoFields):
		writeError(w, http.StatusBadRequest, "No fields provided for update.")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
		return
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "Username or email already exists.")
		return
	default:
		h.logger.Error("account update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully.",
		"user":    acct,
	})
}

type updateAdminsRequest struct {
	Usernames []string `json:"usernames"`
	Action    string   `json:"action"`
}

// UpdateAdmins grants or revokes admin capability for a list of usernames.
// Targets are processed independently: one failed target never aborts the
// rest, and the response reports the aggregate success count.
// POST /auth/update_admins
func (h *AuthHandler) UpdateAdmins(w http.ResponseWriter, r *http.Request) {
	var req updateAdminsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(req.Usernames) == 0 {
		writeError(w, http.StatusBadRequest, "No usernames provided.")
		return
	}

	var grant bool
	switch req.Action {
	case "grant", "create":
		grant = true
	case "revoke", "delete":
		grant = false
	default:
		writeError(w, http.StatusBadRequest, "Action must be \"grant\" or \"revoke\".")
		return
	}

	res := h.auth.SetAdminBatch(r.Context(), req.Usernames, grant)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Admin list updated.",
		"updated": res.Updated,
	})
}
