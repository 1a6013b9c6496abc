package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"forum_board/internal/app/service"
	"forum_board/internal/common"
	"forum_board/internal/domain/model"
)

type contextKey string

const principalCtxKey contextKey = "principal"

// TokenFromRequest extracts the bearer token: Authorization header first,
// then the "token" cookie.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") || strings.HasPrefix(header, "BEARER ") || strings.HasPrefix(header, "bearer ") {
		return header[7:]
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticator requires a valid token and resolves it to a user, which is
// stored in the request context. Missing, malformed, expired, or revoked
// tokens end the request with 401.
func Authenticator(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			principal, err := authService.CurrentUser(r.Context(), token)
			if err != nil {
				common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), principalCtxKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticator resolves a token when one is presented but lets
// anonymous requests through. An invalid or expired token is treated as
// anonymous; a revoked token is still rejected so a logged-out credential
// cannot keep browsing.
func OptionalAuthenticator(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authService.CurrentUser(r.Context(), token)
			if err != nil {
				if errors.Is(err, common.ErrTokenRevoked) {
					common.RespondWithError(w, http.StatusUnauthorized, err.Error())
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalCtxKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok || !principal.IsAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext returns the authenticated user, if any.
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	principal, ok := ctx.Value(principalCtxKey).(*model.User)
	return principal, ok && principal != nil
}
