package middleware

import (
	"net/http"
	"strings"

	"syllabye/internal/auth"
)

// SessionMiddleware gives every request its own auth.State built from the
// inbound cookie header. Page requests are hydrated before the handler runs;
// proxy routes under /api/ relay the cookie themselves and hydrate on demand.
func SessionMiddleware(hydrator *auth.Hydrator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := auth.NewState(r.Header.Get("Cookie"))
			ctx := auth.WithState(r.Context(), st)
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				hydrator.Hydrate(ctx, st)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
