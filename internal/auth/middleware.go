package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/domain"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

type contextKey struct{}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(contextKey{}).(domain.User)
	return user, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth validates the bearer token, loads the account and injects it
// into the request context.
func RequireAuth(authSvc *Service, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
				return
			}

			user, err := authSvc.CurrentUser(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					logger.Debug().Err(err).Msg("token rejected")
					httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Could not validate credentials")
					return
				}
				logger.Error().Err(err).Msg("resolve current user")
				httperrors.RespondInternalError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdminUser rejects authenticated users without the admin flag. It
// must run after RequireAuth.
func RequireAdminUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
			return
		}
		if err := RequireAdmin(user); err != nil {
			httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "Not enough permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}
