// Package identity holds the caller-supplied identity fragments and the
// shared text-analysis helpers used by task selection, result merging, and
// confidence scoring.
package identity

import (
	"errors"
	"strings"
)

// ErrNoFragments is returned when every fragment of a SearchParameters is empty.
var ErrNoFragments = errors.New("at least one identity fragment is required")

// SearchParameters is the fragment set supplied by the caller. Every field is
// optional; Validate enforces that at least one is non-empty.
type SearchParameters struct {
	FullName       string `json:"full_name,omitempty" yaml:"full_name"`
	Email          string `json:"email,omitempty" yaml:"email"`
	Phone          string `json:"phone,omitempty" yaml:"phone"`
	Username       string `json:"username,omitempty" yaml:"username"`
	Address        string `json:"address,omitempty" yaml:"address"`
	Keywords       string `json:"keywords,omitempty" yaml:"keywords"`
	KnownRelatives string `json:"known_relatives,omitempty" yaml:"known_relatives"`
}

// Validate returns ErrNoFragments when no fragment is supplied.
// This is the only fatal pre-dispatch check.
func (p SearchParameters) Validate() error {
	if p.IsEmpty() {
		return ErrNoFragments
	}
	return nil
}

// IsEmpty reports whether every fragment is blank.
func (p SearchParameters) IsEmpty() bool {
	for _, f := range []string{
		p.FullName, p.Email, p.Phone, p.Username, p.Address, p.Keywords, p.KnownRelatives,
	} {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// FragmentCount counts the non-empty scoreable fragments (name, email, phone,
// username, address, keywords). Known relatives do not count toward the
// data-point bonus.
func (p SearchParameters) FragmentCount() int {
	n := 0
	for _, f := range []string{p.FullName, p.Email, p.Phone, p.Username, p.Address, p.Keywords} {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return n
}

// KeywordList splits the keyword fragment on commas, semicolons, and
// newlines, lower-cases each entry, and drops blanks.
func (p SearchParameters) KeywordList() []string {
	return splitList(p.Keywords)
}

// RelativeList splits the known-relatives fragment the same way keywords are
// split. Entries keep their original casing for query building; matching is
// case-insensitive.
func (p SearchParameters) RelativeList() []string {
	out := []string{}
	for _, part := range strings.FieldsFunc(p.KnownRelatives, isListSep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FragmentNames lists which fragments are present, for search-context blocks
// and event logs.
func (p SearchParameters) FragmentNames() []string {
	names := []string{}
	for _, e := range []struct {
		name  string
		value string
	}{
		{"full_name", p.FullName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"username", p.Username},
		{"address", p.Address},
		{"keywords", p.Keywords},
		{"known_relatives", p.KnownRelatives},
	} {
		if strings.TrimSpace(e.value) != "" {
			names = append(names, e.name)
		}
	}
	return names
}

func isListSep(r rune) bool { return r == ',' || r == ';' || r == '\n' }

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.FieldsFunc(s, isListSep) {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// EmailLocalPart returns the part of an email address before '@', or "" when
// the address has no '@'.
func EmailLocalPart(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	return email[:at]
}

// PlausibleUsername reports whether an email local-part looks usable as a
// standalone username: at least four runes and not a bare role address.
func PlausibleUsername(local string) bool {
	local = strings.ToLower(strings.TrimSpace(local))
	if len(local) < 4 {
		return false
	}
	switch local {
	case "info", "admin", "contact", "support", "sales", "hello", "mail", "office", "noreply", "no-reply":
		return false
	}
	return true
}

// DigitsOnly strips every non-digit rune from a phone fragment.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
