package identity

import "strings"

// NormalizeURL reduces a web result link to its dedup key: scheme stripped,
// leading "www." stripped, query and fragment dropped, trailing slashes
// dropped, lower-cased. The same page surfacing from differently-worded
// queries reduces to the same key.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	for _, prefix := range []string{"https://", "http://", "//"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	return s
}
