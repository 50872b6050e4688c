package middleware

import (
	"context"
	"net/http"

	"github.com/hearthhq/hearth/internal/session"
)

type contextKeyAuth string

const (
	// AuthPrincipalKey is the context key for the authenticated principal.
	AuthPrincipalKey contextKeyAuth = "auth_principal"
)

// Principal is the request-scoped view of the resolved account. It is read
// from the live account record on every request and never persisted.
type Principal struct {
	AccountID string
	Username  string
	IsAdmin   bool
	Token     string // the session token that resolved this principal
}

// RequireSession returns an HTTP middleware that resolves the session
// cookie into an authenticated identity. The account is re-fetched from the
// record store on every request, so role changes apply immediately.
//
// On failure the request is rejected with a 401 JSON error and no later
// check or handler runs. It must precede RequireAdmin in every chain: an
// unauthenticated request to an admin-only route must see 401, never 403.
func RequireSession(mgr *session.Manager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}

			acct, err := mgr.Resolve(r.Context(), token)
			if err != nil {
				if err == session.ErrUnauthenticated {
					writeAuthError(w, http.StatusUnauthorized, "Unauthorized access. Please log in.")
				} else {
					writeAuthError(w, http.StatusInternalServerError, "Internal server error.")
				}
				return
			}

			principal := &Principal{
				AccountID: acct.ID,
				Username:  acct.Username,
				IsAdmin:   acct.IsAdmin,
				Token:     token,
			}
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns an HTTP middleware that enforces admin capability.
// It must be used after RequireSession in the middleware chain.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r.Context())
			if principal == nil || !principal.IsAdmin {
				writeAuthError(w, http.StatusForbidden, "Forbidden: Admins only.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil if no principal is present (i.e., unauthenticated request).
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid import cycle with handler package
	w.Write([]byte(`{"error":{"code":` + httpStatusString(status) + `,"message":"` + message + `"}}`))
}

func httpStatusString(code int) string {
	switch code {
	case 401:
		return "401"
	case 403:
		return "403"
	default:
		return "500"
	}
}
