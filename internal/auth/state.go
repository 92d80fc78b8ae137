package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"syllabye/internal/model"
)

type contextKey string

const stateContextKey = contextKey("auth-state")

// ErrNoSession is returned by operations that need an authenticated request.
var ErrNoSession = errors.New("no session")

// State holds the session and user of one request. It replaces global
// reactive slots: every request gets its own State through the context.
type State struct {
	cookie string

	sessionOnce sync.Once

	mu             sync.RWMutex
	session        *model.Session
	user           *model.User
	userFetchedFor string
}

// NewState creates an anonymous state for a request carrying the given cookie header.
func NewState(cookie string) *State {
	return &State{cookie: cookie}
}

// Cookie returns the inbound cookie header, forwarded verbatim to the backend.
func (s *State) Cookie() string {
	return s.cookie
}

func (s *State) Session() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *State) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// UserID returns the session's user ID, or ErrNoSession.
func (s *State) UserID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return "", ErrNoSession
	}
	return s.session.UserID, nil
}

// Authenticated reports whether a session is present.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// SetSession stores the session and reports whether the user behind it needs
// fetching: it went from absent to present, or to a different user. A change
// of user drops the previous user's profile.
func (s *State) SetSession(session *model.Session) bool {
	if session != nil && session.UserID == "" {
		session = nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.session
	if session == nil {
		s.session = nil
		return false
	}
	cp := *session
	s.session = &cp
	if prev == nil {
		return true
	}
	if prev.UserID != cp.UserID {
		s.user = nil
		s.userFetchedFor = ""
		return true
	}
	return false
}

// SetUser stores the user, deriving NewUser from the nickname.
func (s *State) SetUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	cp := *user
	cp.DeriveNewUser()
	s.user = &cp
}

// Reset drops session and user, as on logout.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.user = nil
	s.userFetchedFor = ""
}

// claimUserFetch returns true only for the first caller asking to fetch the
// user of the current session value.
func (s *State) claimUserFetch() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return "", false
	}
	userID := s.session.UserID
	if s.userFetchedFor == userID {
		return "", false
	}
	s.userFetchedFor = userID
	return userID, true
}

func WithState(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, stateContextKey, st)
}

// FromContext returns the request's State, or an empty anonymous one when
// the session middleware did not run.
func FromContext(ctx context.Context) *State {
	if st, ok := ctx.Value(stateContextKey).(*State); ok && st != nil {
		return st
	}
	return NewState("")
}

// SessionCookie returns "name=value" for the named cookie of the inbound
// header, or "" when the request carries no such cookie. Malformed neighbouring
// cookies are skipped rather than failing the lookup.
func (s *State) SessionCookie(name string) string {
	if s.cookie == "" || name == "" {
		return ""
	}
	req := &http.Request{Header: http.Header{"Cookie": {s.cookie}}}
	c, err := req.Cookie(name)
	if err != nil || c.Value == "" {
		return ""
	}
	return c.Name + "=" + c.Value
}
