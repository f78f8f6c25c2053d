package config

import (
	"fmt"
	"net/url"
	"strings"
)

// SanitizeOrigin validates and normalizes a CORS origin.
// It returns scheme://host[:port] in lowercase; a bare host is assumed to be https.
// The single wildcard "*" is passed through. Paths, queries, fragments and
// partial wildcards are rejected.
func SanitizeOrigin(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", fmt.Errorf("origin cannot be empty")
	}
	if cleaned == "*" {
		return cleaned, nil
	}

	cleaned = strings.ToLower(cleaned)

	scheme := "https"
	switch {
	case strings.HasPrefix(cleaned, "http://"):
		scheme = "http"
		cleaned = strings.TrimPrefix(cleaned, "http://")
	case strings.HasPrefix(cleaned, "https://"):
		cleaned = strings.TrimPrefix(cleaned, "https://")
	}

	// Remove a single trailing slash (root path)
	cleaned = strings.TrimSuffix(cleaned, "/")

	if strings.ContainsAny(cleaned, " \t\r\n") {
		return "", fmt.Errorf("origin cannot contain whitespace")
	}
	if strings.Contains(cleaned, "*") {
		return "", fmt.Errorf("partial wildcards are not allowed in origins")
	}

	u, err := url.Parse(scheme + "://" + cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid origin format")
	}

	if u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("origin must not include path, query, or fragment")
	}

	return u.Scheme + "://" + u.Host, nil
}
