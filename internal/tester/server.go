package tester

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/moamenhredeen/oastest/internal/models"
)

var serverVariable = regexp.MustCompile(`\{[^}]*\}`)

// SelectServer picks the base URL to test against. An explicit server must
// match one of the declared servers, where each {variable} matches any single
// path segment. Without an explicit server the document must declare exactly
// one, whose variables are replaced by their defaults.
func SelectServer(servers []models.Server, explicit string) (string, error) {
	explicit = strings.TrimRight(explicit, "/")

	if explicit != "" {
		if len(servers) == 0 {
			return explicit, nil
		}
		for _, s := range servers {
			if serverMatches(s.URL, explicit) {
				return explicit, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidServer, explicit)
	}

	switch len(servers) {
	case 0:
		return "", ErrNoServer
	case 1:
		return strings.TrimRight(ExpandServer(servers[0]), "/"), nil
	}

	urls := make([]string, len(servers))
	for i, s := range servers {
		urls[i] = s.URL
	}
	return "", fmt.Errorf("%w: %s", ErrAmbiguousServer, strings.Join(urls, ", "))
}

// ExpandServer substitutes server variables with their default values.
func ExpandServer(s models.Server) string {
	return serverVariable.ReplaceAllStringFunc(s.URL, func(m string) string {
		if v, ok := s.Variables[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

func serverMatches(template, candidate string) bool {
	template = strings.TrimRight(template, "/")
	if template == "" {
		return true
	}

	var b strings.Builder
	if !strings.HasPrefix(template, "/") {
		b.WriteString("^")
	}
	last := 0
	for _, loc := range serverVariable.FindAllStringIndex(template, -1) {
		b.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		b.WriteString(`[^/]+`)
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(template[last:]))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(candidate)
}
