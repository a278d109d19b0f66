// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every error response has the same envelope so client tooling can handle
// failures generically:
//
//	{ "error": "Validation failed", "details": ["name is required"] }
//
// details is present only for validation failures; message only for 500s.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
	Message string   `json:"message,omitempty"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// NoContent writes a status with an empty body, e.g. 204 after a delete.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// GeneralError wraps a plain message, e.g. for 404 and 409.
func GeneralError(msg string) Response {
	return Response{Error: msg}
}

// GeneralErrorf is GeneralError with fmt.Sprintf formatting.
func GeneralErrorf(format string, args ...any) Response {
	return GeneralError(fmt.Sprintf(format, args...))
}

// ValidationError carries the complete list of problems in one response so
// a client can fix everything in a single round trip.
func ValidationError(details []string) Response {
	return Response{
		Error:   "Validation failed",
		Details: details,
	}
}

// InternalError is the 500 body. Only err's message is exposed; stack traces
// stay in the server log.
func InternalError(err error) Response {
	return Response{
		Error:   "Internal server error",
		Message: err.Error(),
	}
}
