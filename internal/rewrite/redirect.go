package rewrite

import (
	"net/url"
	"strings"
)

// NormalizeLocation rewrites a backend redirect Location header so the
// client can follow it directly. Absolute locations pass through untouched;
// root-relative locations are anchored to the target's scheme and host;
// anything else is resolved against the target URL. If the target fails to
// re-parse the header is returned as the backend supplied it.
func NormalizeLocation(location, target string) string {
	if location == "" {
		return location
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location
	}

	base, err := url.Parse(target)
	if err != nil || base.Host == "" {
		return location
	}

	if strings.HasPrefix(location, "/") {
		return base.Scheme + "://" + base.Host + location
	}

	ref, err := url.Parse(location)
	if err != nil {
		return location
	}

	return base.ResolveReference(ref).String()
}
