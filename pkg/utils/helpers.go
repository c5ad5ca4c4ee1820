package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseContentRange reads the total row count from a Content-Range header
// such as "0-4/5" or "*/0". An unknown total ("*") is an error.
func ParseContentRange(header string) (int, error) {
	i := strings.LastIndex(header, "/")
	if i < 0 {
		return 0, fmt.Errorf("malformed content range %q", header)
	}
	total := strings.TrimSpace(header[i+1:])
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("content range %q has no exact total: %w", header, err)
	}
	return n, nil
}

// BuildContentRange formats a Content-Range header for a window of rows
// starting at offset out of total.
func BuildContentRange(offset, rows, total int) string {
	if rows <= 0 {
		return fmt.Sprintf("*/%d", total)
	}
	return fmt.Sprintf("%d-%d/%d", offset, offset+rows-1, total)
}

// ProjectRef returns the first DNS label of the backend host, the value hosted
// backends use to namespace the persisted auth session.
func ProjectRef(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "local"
	}
	return strings.Split(u.Hostname(), ".")[0]
}

// SessionStorageKey is the key the auth session is persisted under.
func SessionStorageKey(rawURL string) string {
	return fmt.Sprintf(SessionStorageKeyFmt, ProjectRef(rawURL))
}
