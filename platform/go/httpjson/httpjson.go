// Package httpjson holds the tiny helpers every handler uses to emit JSON
// responses, so failure bodies stay uniform across the gate and the domains.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// Write encodes v as the response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes the canonical failure body: {"message": "<reason>"}.
func Message(w http.ResponseWriter, status int, message string) {
	Write(w, status, map[string]string{"message": message})
}
