package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"paperd/internal/backend"
	"paperd/internal/prompt"
	"paperd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case prompt.IsValidation(err):
		return http.StatusBadRequest
	case backend.IsBusy(err):
		return http.StatusTooManyRequests
	case backend.IsModelUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case backend.IsGeneration(err):
		return http.StatusBadGateway
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON payload with its mapped status and
// returns that status.
func writeError(w http.ResponseWriter, err error) int {
	status := statusFor(err)
	resp := types.ErrorResponse{Error: err.Error(), Code: status}
	var ve *prompt.ValidationError
	if errors.As(err, &ve) {
		resp.Missing = ve.Missing
	}
	if status == http.StatusTooManyRequests {
		IncrementBackpressure("queue")
	}
	writeJSON(w, status, resp)
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
