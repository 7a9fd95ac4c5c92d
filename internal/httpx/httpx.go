// Package httpx holds small HTTP helpers shared by the API: JSON
// read/write, request ids, and middleware.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// NewRequestID returns a fresh correlation id for error responses.
func NewRequestID() string { return "req_" + uuid.NewString() }

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes the request body into dst, rejecting unknown fields.
func ReadJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteError writes the standard error envelope:
//
//	{"request_id": "...", "error": {"code": "...", "message": "..."}}
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, map[string]any{
		"request_id": NewRequestID(),
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
