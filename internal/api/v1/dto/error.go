package dto

// ErrorDTO is the JSON error body of proxy routes.
type ErrorDTO struct {
	Error string `json:"error"`
}
