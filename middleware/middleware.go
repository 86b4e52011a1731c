package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clipstream/authcore/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyClaims stores parsed access token claims
	ContextKeyClaims ContextKey = "claims"
)

// accessTokenCookie is the cookie checked when no Authorization header is
// present, for browser clients that hold tokens in cookies.
const accessTokenCookie = "accessToken"

// unauthorizedBody is the single response body for every rejection, so
// clients cannot tell a missing token from an expired one.
const unauthorizedBody = `{"error":"authentication_error","message":"authentication required"}`

// CredentialVerifier validates a raw access token and returns its claims.
// *auth.Service satisfies this.
type CredentialVerifier interface {
	VerifyAccessToken(raw string) (*token.AccessClaims, error)
}

// ExtractCredential pulls the access token from the Authorization header,
// falling back to the access token cookie. Returns "" when neither is
// present.
func ExtractCredential(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth is middleware that validates the request's access token and
// injects the user ID and claims into the request context.
func RequireAuth(verifier CredentialVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractCredential(r)
			if raw == "" {
				unauthorized(w)
				return
			}

			claims, err := verifier.VerifyAccessToken(raw)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			r = r.WithContext(ctx)

			next(w, r)
		}
	}
}

// UserIDFromContext returns the authenticated user ID set by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok
}

// ClaimsFromContext returns the access token claims set by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*token.AccessClaims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.AccessClaims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, unauthorizedBody, http.StatusUnauthorized)
}
