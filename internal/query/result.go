package query

import "encoding/json"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome of a composable fetch. Failures are not fatal: they
// leave Data at its default and are reported through Status and Err.
type Result[T any] struct {
	Data   T
	Status Status
	Err    error
}

func Success[T any](data T) Result[T] {
	return Result[T]{Data: data, Status: StatusSuccess}
}

func Failure[T any](def T, err error) Result[T] {
	return Result[T]{Data: def, Status: StatusError, Err: err}
}

func (r Result[T]) OK() bool {
	return r.Status == StatusSuccess
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		Data   T      `json:"data"`
		Status Status `json:"status"`
		Error  string `json:"error,omitempty"`
	}{Data: r.Data, Status: r.Status}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
