package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerToken pulls the credential out of the Authorization header.
// Returns false when the header is absent or not a Bearer scheme.
func ExtractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	const prefix = "Bearer "
	// Case-insensitive prefix match.
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(authHeader[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}
