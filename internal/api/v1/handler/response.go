package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"syllabye/internal/api/v1/dto"
	"syllabye/internal/service"

	"github.com/rs/zerolog"
)

var nullBody = json.RawMessage("null")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorDTO{Error: msg})
}

// relay forwards one request to the backend with the inbound cookie header and
// writes the backend's JSON body. Any failure is logged and answered with null.
func relay(w http.ResponseWriter, r *http.Request, backend service.BackendClient, logger zerolog.Logger, req service.BackendRequest) {
	req.Cookie = r.Header.Get("Cookie")
	resp, err := backend.Do(r.Context(), req)
	if err != nil {
		logger.Warn().Err(err).Str("path", req.Path).Msg("Backend fetch failed in proxy route")
		writeJSON(w, http.StatusOK, nullBody)
		return
	}
	writeJSON(w, http.StatusOK, resp.JSON())
}

// backendStatus extracts the backend status code of err, or 502 for transport failures.
func backendStatus(err error) int {
	var statusErr *service.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return http.StatusBadGateway
}

// backendErrorText returns the backend's error body, never the transport error.
func backendErrorText(err error) string {
	var statusErr *service.StatusError
	if errors.As(err, &statusErr) && statusErr.Body != "" {
		return statusErr.Body
	}
	return http.StatusText(backendStatus(err))
}

// queryInt reads an optional integer query parameter; absent means zero.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return n, nil
}
