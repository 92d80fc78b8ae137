package service

import (
	"syllabye/internal/auth"
	"syllabye/internal/query"
)

// Caller identifies who a composable fetch runs for: the cache scope of the
// session and the cookie attached to backend calls.
type Caller struct {
	Scope  string
	Cookie string
}

// CallerFor derives the Caller of a request state. Only the session cookie is
// attached, never the whole inbound header.
func CallerFor(st *auth.State, cookieName string) Caller {
	return Caller{
		Scope:  query.ScopeFor(st.Session()),
		Cookie: st.SessionCookie(cookieName),
	}
}
