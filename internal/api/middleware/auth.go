package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/socialnet/internal/api/render"
	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/service"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// TokenAuth resolves an optional bearer token to a user. Requests without an
// Authorization header continue anonymously; a header that is malformed or
// carries an unknown or expired token is rejected with 401.
func TokenAuth(tokenService *service.TokenService, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := ParseBearer(authHeader)
			if !ok {
				log.Debug().Str("op", "middleware.TokenAuth").Msg("malformed authorization header")
				render.Detail(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}

			user, err := tokenService.VerifyAccess(r.Context(), token)
			if err != nil {
				render.InternalError(w, "middleware.TokenAuth", err)
				return
			}
			if user == nil {
				render.Detail(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}

			if err := userService.Touch(r.Context(), user); err != nil {
				render.InternalError(w, "middleware.TokenAuth", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireUser rejects anonymous requests with 403.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			render.Detail(w, http.StatusForbidden, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BasicAuth authenticates username/password credentials for token issuance.
func BasicAuth(tokenService *service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				basicChallenge(w, "Authentication credentials were not provided.")
				return
			}

			user, err := tokenService.Login(r.Context(), username, password)
			if err != nil {
				if errors.Is(err, service.ErrInvalidCredentials) {
					basicChallenge(w, "Invalid username/password.")
					return
				}
				render.InternalError(w, "middleware.BasicAuth", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func basicChallenge(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="api"`)
	render.Detail(w, http.StatusUnauthorized, msg)
}

// ParseBearer extracts the token from a "Bearer <token>" header value.
func ParseBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	// "Bearer  abc" carries an empty token before the second space
	if strings.HasPrefix(token, " ") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}
