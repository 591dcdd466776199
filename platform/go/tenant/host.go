package tenant

import (
	"errors"
	"net"
	"strings"
)

// ErrInvalidHost is returned when the Host header cannot yield a subdomain.
var ErrInvalidHost = errors.New("invalid host header")

// SubdomainFromHost extracts the tenant subdomain from an HTTP Host header.
// The host must carry at least two dot-separated labels; the first label,
// lowercased, is the subdomain. A port suffix is ignored.
func SubdomainFromHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", ErrInvalidHost
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return "", ErrInvalidHost
	}

	sub := strings.ToLower(labels[0])
	if sub == "" {
		return "", ErrInvalidHost
	}

	return sub, nil
}
