package problem

import "strings"

// ParseRange expands a problem range argument. "A~E" yields the inclusive
// letter range A through E (uppercased); anything else is split on commas
// and whitespace with case preserved, so "a,B2 c" stays [a B2 c].
func ParseRange(s string) []string {
	if strings.Contains(s, "~") {
		parts := strings.Split(s, "~")
		if len(parts) == 2 {
			start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			if len(start) == 1 && len(end) == 1 {
				a := strings.ToUpper(start)[0]
				b := strings.ToUpper(end)[0]
				var out []string
				for c := a; c <= b; c++ {
					out = append(out, string(rune(c)))
				}
				return out
			}
		}
	}
	return strings.Fields(strings.ReplaceAll(s, ",", " "))
}
