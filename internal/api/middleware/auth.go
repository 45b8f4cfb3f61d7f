package middleware

import (
	"context"
	"net/http"

	"github.com/dom/fitgate/internal/api/httpx"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/service"
)

// TokenHeader carries the bearer token on every authenticated request.
const TokenHeader = "x-auth-token"

type contextKey string

const (
	PrincipalKey contextKey = "principal"
)

// Authenticator verifies a bearer token and its backing session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Principal, error)
}

// Auth rejects requests without a valid token before the next handler runs
// and attaches the verified principal to the request context.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.Authenticate(r.Context(), r.Header.Get(TokenHeader))
			if err != nil {
				if domain.KindOf(err) == domain.KindAuth {
					httpx.Unauthorized(w, err)
					return
				}
				httpx.Fail(w, "middleware.Auth", err, false)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPrincipal(ctx context.Context) (*service.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(*service.Principal)
	return principal, ok && principal != nil
}

func GetUserID(ctx context.Context) (domain.UserID, bool) {
	principal, ok := GetPrincipal(ctx)
	if !ok {
		return "", false
	}
	return principal.UserID, true
}

// WithPrincipal is used by tests that exercise handlers without the middleware.
func WithPrincipal(ctx context.Context, principal *service.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}
