package connection

import (
	"fmt"
	"net/url"
	"strings"
)

const subjectPlaceholder = "{subject}"

// EndpointURL builds the realtime URL for subject. The scheme follows the
// origin (https/wss → wss, http/ws → ws); the origin's path is replaced by
// the template.
func EndpointURL(origin, pathTemplate, subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidEndpoint)
	}
	if pathTemplate == "" {
		pathTemplate = DefaultPathTemplate
	}
	if !strings.Contains(pathTemplate, subjectPlaceholder) {
		return "", fmt.Errorf("%w: path template %q has no %s", ErrInvalidEndpoint, pathTemplate, subjectPlaceholder)
	}

	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: origin %q has no host", ErrInvalidEndpoint, origin)
	}

	if !strings.HasPrefix(pathTemplate, "/") {
		pathTemplate = "/" + pathTemplate
	}
	u.Path = strings.ReplaceAll(pathTemplate, subjectPlaceholder, subject)
	u.RawPath = strings.ReplaceAll(pathTemplate, subjectPlaceholder, url.PathEscape(subject))
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}
