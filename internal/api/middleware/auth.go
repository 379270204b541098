package middleware

import (
	"net/http"
	"strings"

	"github.com/Project-Sylos/Nimbus/internal/auth"
	"github.com/Project-Sylos/Nimbus/internal/types"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, auth.TokenType) {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the authenticated principal in the request context.
func RequireAuth(provider auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "No token provided. Authorization denied.")
				return
			}

			principal, err := provider.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, types.Message(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
