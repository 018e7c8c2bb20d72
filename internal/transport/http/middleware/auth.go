package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-blog-auth/internal/domain"
	"github.com/go-chi/chi/v5"
)

type contextKey string

const UserKey contextKey = "user"

type accessValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*domain.User, error)
}

// AuthGuard resolves the bearer token to a live user. Routes registered with
// Public are let through without a token, picking up the user when one is
// presented anyway.
type AuthGuard struct {
	validator accessValidator
	public    map[string]struct{}
}

func NewAuthGuard(v accessValidator) *AuthGuard {
	return &AuthGuard{validator: v, public: map[string]struct{}{}}
}

// Public marks method + route pattern (e.g. "GET", "/v1/user/{username}") as
// reachable without a token.
func (g *AuthGuard) Public(method, pattern string) {
	g.public[method+" "+pattern] = struct{}{}
}

func (g *AuthGuard) isPublic(r *http.Request) bool {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return false
	}
	_, ok := g.public[r.Method+" "+rctx.RoutePattern()]
	return ok
}

// Require rejects the request with 401 unless the route is public or a valid
// access token is presented. The route pattern is only known once chi has
// matched, so Require must be installed with Group or With, not Use on the
// root router.
func (g *AuthGuard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.isPublic(r) {
			g.Optional(next).ServeHTTP(w, r)
			return
		}
		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, domain.MsgAuthorizationFailed)
			return
		}
		u, err := g.validator.ValidateAccessToken(r.Context(), token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, domain.MsgAuthorizationFailed)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// Optional attaches the user when a valid token is presented and otherwise
// proceeds anonymously.
func (g *AuthGuard) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if u, err := g.validator.ValidateAccessToken(r.Context(), token); err == nil {
				r = r.WithContext(WithUser(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken returns the token of an "Authorization: Bearer <jwt>" header.
// Anything that is not three dot-separated segments is rejected up front.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return "", false
	}
	return token, true
}

func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// UserFromContext returns the user attached by AuthGuard.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok && u != nil
}
