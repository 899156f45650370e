// Package cookies extracts judge session cookies from locally installed
// browsers and caches them per domain with TTL-based expiry.
package cookies

import "strings"

// Cookie is one browser cookie relevant to a judge domain.
type Cookie struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Domain  string `json:"domain"`
	Path    string `json:"path,omitempty"`
	Expires int64  `json:"expires,omitempty"` // unix seconds, 0 for session cookies
	Secure  bool   `json:"secure,omitempty"`
}

// Header renders cookies as a Cookie request header value.
func Header(cs []Cookie) string {
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.Name)
		b.WriteByte('=')
		b.WriteString(c.Value)
	}
	return b.String()
}
