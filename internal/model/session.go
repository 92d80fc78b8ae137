package model

// Session is the backend's view of the cookie: only the user it belongs to.
type Session struct {
	UserID string `json:"userId"`
}
