package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Scope partitions the cache by upstream server and data release. Entries
// written under one scope are never visible under another.
type Scope struct {
	Server  string
	Release string
}

// String returns the scope as "server@release".
func (s Scope) String() string {
	return s.Server + "@" + s.Release
}

// BuildKey generates a deterministic cache key.
// Format: <scope>:<endpoint>[?name=value&name=value...]
//
// Parameter names are sorted and parameters with empty values are dropped, so
// two maps holding the same non-empty entries always produce the same key.
// Names and values are query-escaped, so distinct maps never share a key.
func BuildKey(scope, endpoint string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if name == "" || value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.Grow(len(scope) + len(endpoint) + 16*len(names))
	b.WriteString(scope)
	b.WriteByte(':')
	b.WriteString(endpoint)

	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[name]))
	}

	return b.String()
}

// ScopedKey is BuildKey with a Scope value.
func ScopedKey(scope Scope, endpoint string, params map[string]string) string {
	return BuildKey(scope.String(), endpoint, params)
}
