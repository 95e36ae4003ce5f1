package storage

import (
	"net/url"
	"path"
	"strings"

	"yochan/failures"
)

// URLPrefix is the path under which artifacts are served.
const URLPrefix = "/uploads"

// Place returns the storage key for an artifact: {purpose}/{id}.{format}.
func Place(purpose, id, format string) string {
	return purpose + "/" + id + "." + format
}

// PublicURL joins the serving base URL, the /uploads prefix and key.
func PublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + URLPrefix + "/" + strings.Join(segments, "/")
}

// KeyFromURL resolves an absolute artifact URL back to its storage key.
func KeyFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", failures.Validation("Invalid URL.")
	}
	return CleanKey(strings.TrimPrefix(u.Path, URLPrefix))
}

// CleanKey normalises a request path into a key that cannot leave the
// storage root.
func CleanKey(p string) (string, error) {
	key := strings.TrimPrefix(path.Clean("/"+p), "/")
	if key == "" {
		return "", notFoundFile()
	}
	return key, nil
}
