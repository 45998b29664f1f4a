package validation

import (
	"mime"
	"strings"
)

// MediaType strips parameters from a Content-Type or media range and
// lowercases it: "application/json; charset=utf-8" becomes "application/json".
func MediaType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// MediaTypeMatches reports whether actual falls within pattern. Both the type
// and the subtype of pattern may be "*".
func MediaTypeMatches(pattern, actual string) bool {
	pt, ps := splitMediaType(MediaType(pattern))
	at, as := splitMediaType(MediaType(actual))
	if pt == "" || at == "" {
		return false
	}
	if pt != "*" && pt != at {
		return false
	}
	return ps == "*" || ps == as
}

// Accepts reports whether actual satisfies any media range of an Accept header
// value such as "application/json, text/*;q=0.5".
func Accepts(accept, actual string) bool {
	for _, r := range strings.Split(accept, ",") {
		if MediaTypeMatches(r, actual) {
			return true
		}
	}
	return false
}

func splitMediaType(mt string) (string, string) {
	typ, sub, ok := strings.Cut(mt, "/")
	if !ok {
		if mt == "*" {
			return "*", "*"
		}
		return "", ""
	}
	return typ, sub
}
