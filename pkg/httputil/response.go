package httputil

import (
	"encoding/json"
	"net/http"
)

// Client-facing error messages
const (
	MsgUnauthorized       = "Unauthorized."
	MsgForbidden          = "Forbidden."
	MsgAccountNotFound    = "Account does not exist."
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgEmailTaken         = "E-mail address has been already taken."
	MsgInternal           = "Unable to process your request. Please contact support."
	MsgTooManyRequests    = "Too many requests. Please try again later."
	MsgNotFound           = "Not found."
	MsgMethodNotAllowed   = "Method not allowed."
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrors writes {"errors": [...]} with the given status code
func WriteErrors(w http.ResponseWriter, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	WriteJSON(w, status, ErrorResponse{Errors: messages})
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, messages ...string) {
	WriteErrors(w, http.StatusBadRequest, messages...)
}

// WriteUnauthorized writes the generic unauthorized error (401)
func WriteUnauthorized(w http.ResponseWriter) {
	WriteErrors(w, http.StatusUnauthorized, MsgUnauthorized)
}

// WriteForbidden writes the generic forbidden error (403)
func WriteForbidden(w http.ResponseWriter) {
	WriteErrors(w, http.StatusForbidden, MsgForbidden)
}

// WriteTooManyRequests writes a rate limit error (429)
func WriteTooManyRequests(w http.ResponseWriter) {
	WriteErrors(w, http.StatusTooManyRequests, MsgTooManyRequests)
}

// WriteInternalError writes the generic server error (500).
// The cause is never sent to the client; log it before calling.
func WriteInternalError(w http.ResponseWriter) {
	WriteErrors(w, http.StatusInternalServerError, MsgInternal)
}

// NotFoundHandler answers unmatched routes with the standard error payload
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrors(w, http.StatusNotFound, MsgNotFound)
	})
}

// MethodNotAllowedHandler answers known routes hit with the wrong method
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrors(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})
}
