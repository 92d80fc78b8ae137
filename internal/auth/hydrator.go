package auth

import (
	"context"

	"syllabye/internal/model"

	"github.com/rs/zerolog"
)

// Source is the part of the backend the hydrator needs.
type Source interface {
	GetSession(ctx context.Context, cookie string) (*model.Session, error)
	GetUser(ctx context.Context, cookie, userID string) (*model.User, error)
}

// Hydrator populates a request's State from the backend. Failures fail open:
// the request continues as anonymous (session) or without a profile (user).
type Hydrator struct {
	source Source
	logger zerolog.Logger
}

func NewHydrator(source Source, logger zerolog.Logger) *Hydrator {
	return &Hydrator{
		source: source,
		logger: logger.With().Str("service", "Hydrator").Logger(),
	}
}

// Hydrate makes the single session attempt of a request and, when a session
// appears, the user fetch that follows it. Calling it again is a no-op.
func (h *Hydrator) Hydrate(ctx context.Context, st *State) {
	st.sessionOnce.Do(func() {
		session, err := h.source.GetSession(ctx, st.Cookie())
		if err != nil {
			h.logger.Warn().Err(err).Msg("Session fetch failed, continuing as anonymous")
			session = nil
		}
		h.SetSession(ctx, st, session)
	})
}

// SetSession stores a session and triggers user hydration on the absent to
// present transition.
func (h *Hydrator) SetSession(ctx context.Context, st *State, session *model.Session) {
	if st.SetSession(session) {
		h.HydrateUser(ctx, st)
	}
}

// HydrateUser fetches the user of the current session. Duplicate triggers for
// the same session value are ignored; without a session nothing is fetched.
func (h *Hydrator) HydrateUser(ctx context.Context, st *State) {
	userID, ok := st.claimUserFetch()
	if !ok {
		return
	}

	user, err := h.source.GetUser(ctx, st.Cookie(), userID)
	if err != nil {
		// The session stays; only the user slot is cleared.
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch user")
		st.SetUser(nil)
		return
	}
	st.SetUser(user)
}
