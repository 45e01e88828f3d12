package directory

import (
	"fmt"
	"strings"

	"github.com/secretops/attrcrypt/interfaces"
)

// scopeTerm is one key:value pattern of a search scope expression.
type scopeTerm struct {
	key     string
	pattern string
}

// parseScope splits a scope expression into its OR-ed terms. Each term has
// the form key:value; the value may contain * wildcards. An empty expression
// or a term without a colon is malformed.
func parseScope(scope interfaces.SearchScope) ([]scopeTerm, error) {
	expr := strings.TrimSpace(string(scope))
	if expr == "" {
		return nil, fmt.Errorf("empty search scope")
	}

	parts := strings.Split(expr, " OR ")
	terms := make([]scopeTerm, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		key, pattern, found := strings.Cut(part, ":")
		if !found || key == "" || pattern == "" {
			return nil, fmt.Errorf("malformed scope term %q, expected key:value", part)
		}
		terms = append(terms, scopeTerm{key: key, pattern: pattern})
	}
	return terms, nil
}

// matchPattern reports whether s matches a pattern with * wildcards. A *
// matches any run of characters, including none.
func matchPattern(pattern, s string) bool {
	segments := strings.Split(pattern, "*")
	if len(segments) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, segments[0]) {
		return false
	}
	s = s[len(segments[0]):]

	last := segments[len(segments)-1]
	middle := segments[1 : len(segments)-1]

	for _, segment := range middle {
		if segment == "" {
			continue
		}
		idx := strings.Index(s, segment)
		if idx < 0 {
			return false
		}
		s = s[idx+len(segment):]
	}

	return strings.HasSuffix(s, last)
}
