package handler

import (
	"net/http"

	"syllabye/internal/auth"
	"syllabye/internal/query"

	"github.com/rs/zerolog"
)

// AuthHandler starts logins and ends sessions.
type AuthHandler struct {
	login      *auth.Login
	hydrator   *auth.Hydrator
	store      *query.Store
	cookieName string
	secure     bool
	logger     zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. Cookies it expires carry the
// Secure flag unless secure is false (local development).
func NewAuthHandler(login *auth.Login, hydrator *auth.Hydrator, store *query.Store, cookieName string, secure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		login:      login,
		hydrator:   hydrator,
		store:      store,
		cookieName: cookieName,
		secure:     secure,
		logger:     logger.With().Str("handler", "AuthHandler").Logger(),
	}
}

// RegisterRoutes mounts auth routes
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/login", h.startLogin)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
}

// startLogin godoc
// @Summary Start a login
// @Description Redirects to the identity provider. The return target travels in a signed state token.
// @Tags auth
// @Param redirect query string false "Same-site path to return to"
// @Success 302 {string} string "Redirects to the identity provider"
// @Failure 500 {object} dto.ErrorDTO "Failed to start login"
// @Router /api/auth/login [get]
func (h *AuthHandler) startLogin(w http.ResponseWriter, r *http.Request) {
	target, err := h.login.AuthURL(r.URL.Query().Get("redirect"))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build login URL")
		writeError(w, http.StatusInternalServerError, "Failed to start login")
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// logout godoc
// @Summary Log out
// @Description Expires the session cookie, forgets cached data of the session and redirects to the root page.
// @Tags auth
// @Success 303 {string} string "Redirects to root page"
// @Router /api/auth/logout [post]
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	st := auth.FromContext(r.Context())
	h.hydrator.Hydrate(r.Context(), st)
	scope := query.ScopeFor(st.Session())

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	st.Reset()
	if scope != query.AnonymousScope {
		h.store.DropScope(scope)
	}

	h.logger.Info().Str("scope", scope).Msg("Session logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
