package middleware

import (
	"net/http"

	"syllabye/internal/auth"
)

// RequireSession guards server-rendered pages. Requests without a session are
// sent to the site root with the requested path as the return target.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).Authenticated() {
			http.Redirect(w, r, auth.LoginRedirect(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
