package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"syllabye/internal/api/v1/dto"
	"syllabye/internal/auth"
	"syllabye/internal/model"
	"syllabye/internal/nickname"
	"syllabye/internal/query"
	"syllabye/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const nicknameSearchFailed = "Failed to search for nickname"

// UserHandler relays session and user endpoints and answers nickname checks.
type UserHandler struct {
	backend   service.BackendClient
	hydrator  *auth.Hydrator
	nicknames *nickname.Registry
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(backend service.BackendClient, hydrator *auth.Hydrator, nicknames *nickname.Registry, validate *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		backend:   backend,
		hydrator:  hydrator,
		nicknames: nicknames,
		validate:  validate,
		logger:    logger.With().Str("handler", "UserHandler").Logger(),
	}
}

// RegisterRoutes mounts session and user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/session", h.getSession)
	mux.HandleFunc("GET /api/auth/user/{userId}", h.getUser)
	mux.HandleFunc("GET /api/user/{userId}", h.getUser)
	mux.HandleFunc("PATCH /api/user/update/{userId}", h.updateUser)
	mux.HandleFunc("GET /api/user/nickname", h.searchNickname)
	mux.HandleFunc("GET /api/user/nickname/check", h.checkNickname)
}

// getSession godoc
// @Summary Get the current session
// @Description Relays the backend session for the request's cookie. Answers null when there is none.
// @Tags auth
// @Produce json
// @Success 200 {object} model.Session
// @Router /api/auth/session [get]
func (h *UserHandler) getSession(w http.ResponseWriter, r *http.Request) {
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/me"})
}

// getUser godoc
// @Summary Get a user
// @Description Relays a user profile from the backend. Answers null on failure.
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} model.User
// @Router /api/user/{userId} [get]
func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/users/" + url.PathEscape(userID)})
}

// updateUser godoc
// @Summary Update a user
// @Description Relays a partial profile update to the backend. Answers null on backend failure.
// @Tags users
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param user body model.UserUpdate true "Profile patch"
// @Success 200 {object} model.User
// @Failure 400 {object} dto.ErrorDTO "Invalid JSON payload or validation failed"
// @Router /api/user/update/{userId} [patch]
func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	var patch model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	relay(w, r, h.backend, h.logger, service.BackendRequest{
		Method: http.MethodPatch,
		Path:   "/users/" + url.PathEscape(userID),
		Body:   patch,
	})
}

// searchNickname godoc
// @Summary Check whether a nickname exists
// @Tags users
// @Produce json
// @Param search query string true "Nickname"
// @Success 200 {object} model.NicknameExists
// @Router /api/user/nickname [get]
func (h *UserHandler) searchNickname(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	resp, err := h.backend.Do(r.Context(), service.BackendRequest{
		Path:     "/users/exists",
		RawQuery: url.Values{"search": []string{search}}.Encode(),
		Cookie:   r.Header.Get("Cookie"),
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("search", search).Msg("Nickname search failed in proxy route")
		writeJSON(w, http.StatusOK, dto.ErrorDTO{Error: nicknameSearchFailed})
		return
	}
	writeJSON(w, http.StatusOK, resp.JSON())
}

// checkNickname godoc
// @Summary Validate a nickname
// @Description Validates the format, then debounces a backend existence check.
// @Description A check replaced by a newer one from the same session answers 409.
// @Tags users
// @Produce json
// @Param search query string true "Nickname"
// @Success 200 {object} nickname.Result
// @Failure 409 {object} dto.ErrorDTO "superseded"
// @Router /api/user/nickname/check [get]
func (h *UserHandler) checkNickname(w http.ResponseWriter, r *http.Request) {
	st := auth.FromContext(r.Context())
	h.hydrator.Hydrate(r.Context(), st)

	scope := query.ScopeFor(st.Session())
	if scope == query.AnonymousScope {
		scope += ":" + r.RemoteAddr
	}

	res, err := h.nicknames.For(scope).Check(r.Context(), st.Cookie(), r.URL.Query().Get("search"), st.User().NicknameValue())
	if errors.Is(err, nickname.ErrSuperseded) {
		writeError(w, http.StatusConflict, "superseded")
		return
	}
	if err != nil {
		// Client went away.
		return
	}
	writeJSON(w, http.StatusOK, res)
}
