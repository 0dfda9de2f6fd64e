package middleware

import (
	"context"
	"net/http"
	"strings"

	lmsAuth "github.com/MrEthical07/lmsAuth"
)

// ErrorWriter renders a rejection. The api package passes its responder.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// PrincipalFromContext returns the principal attached by [Authenticate].
func PrincipalFromContext(ctx context.Context) (lmsAuth.Principal, bool) {
	return lmsAuth.PrincipalFromContext(ctx)
}

// Authenticate rejects requests without a valid access token and a live
// session cache entry.
func Authenticate(engine *lmsAuth.Engine, onError ErrorWriter) func(http.Handler) http.Handler {
	onError = orDefault(onError)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				onError(w, r, lmsAuth.ErrEngineNotReady)
				return
			}

			token := AccessToken(r, engine.AccessCookieName())
			p, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := lmsAuth.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize allows only principals whose role is in roles. It must run after
// [Authenticate]; a request without a principal is rejected as unauthenticated.
func Authorize(engine *lmsAuth.Engine, onError ErrorWriter, roles ...lmsAuth.Role) func(http.Handler) http.Handler {
	onError = orDefault(onError)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				onError(w, r, lmsAuth.ErrEngineNotReady)
				return
			}
			p, ok := lmsAuth.PrincipalFromContext(r.Context())
			if !ok {
				onError(w, r, lmsAuth.ErrMissingToken)
				return
			}
			if err := engine.Authorize(r.Context(), p, roles...); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessToken returns the access token from the named cookie, falling back to
// an Authorization: Bearer header.
func AccessToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	token, _ := bearerToken(r.Header.Get("Authorization"))
	return token
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func orDefault(onError ErrorWriter) ErrorWriter {
	if onError != nil {
		return onError
	}
	return func(w http.ResponseWriter, _ *http.Request, err error) {
		kind := lmsAuth.KindOf(err)
		http.Error(w, err.Error(), kind.Status())
	}
}
