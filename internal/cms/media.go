package cms

import "strings"

const mediaPrefix = "/media"

// APIOrigin strips a trailing /api or /api/ from base.
func APIOrigin(base string) string {
	base = strings.TrimSpace(base)
	switch {
	case strings.HasSuffix(base, "/api/"):
		return strings.TrimSuffix(base, "/api/")
	case strings.HasSuffix(base, "/api"):
		return strings.TrimSuffix(base, "/api")
	}
	return base
}

// ResolveMedia makes CMS upload paths absolute. Paths under /media get the API
// origin prepended; everything else, including absolute URLs, is returned as is.
func ResolveMedia(origin, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, mediaPrefix) {
		return origin + path
	}
	return path
}

// MediaURL resolves path against the client's API origin.
func (c *Client) MediaURL(path string) string {
	return ResolveMedia(c.origin, path)
}
