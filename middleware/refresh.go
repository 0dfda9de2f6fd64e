package middleware

import (
	"context"
	"net/http"

	lmsAuth "github.com/MrEthical07/lmsAuth"
)

type tokenPairContextKey struct{}

// TokenPairFromContext returns the pair issued by [Refresh] for this request.
func TokenPairFromContext(ctx context.Context) (lmsAuth.TokenPair, bool) {
	pair, ok := ctx.Value(tokenPairContextKey{}).(lmsAuth.TokenPair)
	return pair, ok
}

// Refresh rotates the refresh-token cookie into a new pair, sets both token
// cookies and attaches the resolved principal and the pair to the request.
func Refresh(engine *lmsAuth.Engine, onError ErrorWriter) func(http.Handler) http.Handler {
	onError = orDefault(onError)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				onError(w, r, lmsAuth.ErrEngineNotReady)
				return
			}

			var token string
			if c, err := r.Cookie(engine.RefreshCookieName()); err == nil {
				token = c.Value
			}
			p, pair, err := engine.Refresh(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			for _, c := range engine.TokenCookies(pair) {
				http.SetCookie(w, c)
			}
			ctx := lmsAuth.WithPrincipal(r.Context(), p)
			ctx = context.WithValue(ctx, tokenPairContextKey{}, pair)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
