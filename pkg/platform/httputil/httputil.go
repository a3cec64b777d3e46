// Package httputil centralizes JSON response writing so every endpoint uses the
// same envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "guardian/pkg/domain-errors"
)

// InternalErrorDetail is the only detail clients see for 5xx responses.
const InternalErrorDetail = "internal server error"

// ErrorResponse is the error envelope: {"detail": "..."}.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a status and detail. Errors without a code, and
// any coded error that maps to 5xx, are reported with a generic detail.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	detail := InternalErrorDetail
	if de, ok := dErrors.As(err); ok {
		status = dErrors.HTTPStatus(de.Code)
		if status < http.StatusInternalServerError {
			detail = de.Message
		}
	}
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}
