package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/proximahq/proxima/pkg/auth"
	"github.com/proximahq/proxima/pkg/rbac"
)

// Envelope result codes. The admin UI branches on code, not HTTP status.
const (
	CodeOK    = 0
	CodeError = 1
)

// Envelope is the uniform response body
type Envelope struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// WriteJSON writes an arbitrary payload with the given status code
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes a 200 envelope wrapping data
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, Envelope{Code: CodeOK, Msg: "success", Data: data})
}

// WriteCreated writes a 201 envelope wrapping data
func WriteCreated(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusCreated, Envelope{Code: CodeOK, Msg: "success", Data: data})
}

// WriteErrorMessage writes an error envelope with the given status and message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Code: CodeError, Msg: message})
}

// WriteBadRequest writes a validation error response (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes an unauthorized error (401)
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnauthorized, message)
}

// WriteForbidden writes a forbidden error (403)
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusForbidden, message)
}

// WriteNotFound writes a not found error (404)
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusNotFound, message)
}

// WriteInternalError writes a 500 with a generic message. The underlying
// error never crosses the boundary; callers log it instead.
func WriteInternalError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
}

// WriteAuthError classifies an error from the auth core and writes the
// matching envelope. Unknown errors become a generic 500.
func WriteAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteUnauthorized(w, "invalid email or password")
	case errors.Is(err, auth.ErrAccountDisabled):
		WriteUnauthorized(w, "account is disabled")
	case errors.Is(err, auth.ErrExpiredCredential), errors.Is(err, auth.ErrSessionNotFound):
		WriteUnauthorized(w, "login has expired")
	case errors.Is(err, auth.ErrInvalidCredential):
		WriteUnauthorized(w, "invalid credential")
	case errors.Is(err, auth.ErrUnauthenticated):
		WriteUnauthorized(w, "authentication required")
	case errors.Is(err, auth.ErrAccessDenied):
		WriteForbidden(w, "access denied")
	case errors.Is(err, rbac.ErrNoRootFound), errors.Is(err, rbac.ErrTreeCycle):
		// Data-integrity faults, not user input problems.
		WriteInternalError(w)
	default:
		WriteInternalError(w)
	}
}
