package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MsgInvalidBody is returned when a request body is not valid JSON
const MsgInvalidBody = "Invalid request body."

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("invalid JSON: empty body")
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes a 400 response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, MsgInvalidBody)
		return false
	}
	return true
}

// RequireFields writes a 400 listing every missing field; it returns false when any is missing.
// fields maps a field name to its submitted value, checked in the order of names.
func RequireFields(w http.ResponseWriter, names []string, fields map[string]string) bool {
	var missing []string
	for _, name := range names {
		if fields[name] == "" {
			missing = append(missing, fmt.Sprintf("%s is a required field", name))
		}
	}
	if len(missing) > 0 {
		WriteBadRequest(w, missing...)
		return false
	}
	return true
}
