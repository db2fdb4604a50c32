package identity

import (
	"regexp"
	"strings"
)

// personName matches two to three capitalized words, the shape most western
// person names take in search snippets. Deliberately loose; downstream
// consumers treat extracted names as candidates, not facts.
var personName = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+){1,2}\b`)

// usPhone matches common US phone renderings: 555-123-4567, (555) 123-4567,
// 555.123.4567, +1 555 123 4567.
var usPhone = regexp.MustCompile(`(?:\+1[\s.-]?)?\(?\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}`)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Signals is the per-item evidence extracted from a web result's title and
// snippet against the supplied fragments.
type Signals struct {
	IsExactMatch     bool     `json:"isExactMatch"`
	HasLocation      bool     `json:"hasLocation"`
	HasPhone         bool     `json:"hasPhone"`
	HasEmail         bool     `json:"hasEmail"`
	HasUsername      bool     `json:"hasUsername"`
	HasKnownRelative bool     `json:"hasKnownRelative"`
	KeywordMatches   []string `json:"keywordMatches"`
}

// MatchSignals inspects free text (typically title + snippet) for
// corroborating fragments. All matching is case-insensitive; phone matching
// compares digits only.
func MatchSignals(text string, params SearchParameters) Signals {
	lower := strings.ToLower(text)
	sig := Signals{KeywordMatches: []string{}}

	if name := strings.TrimSpace(params.FullName); name != "" {
		sig.IsExactMatch = strings.Contains(lower, strings.ToLower(name))
	}
	if addr := strings.TrimSpace(params.Address); addr != "" {
		// A location hit is any address token of 4+ runes appearing in text;
		// full-address matches are rare in snippets.
		for _, tok := range strings.Fields(strings.ToLower(addr)) {
			tok = strings.Trim(tok, ",.")
			if len(tok) >= 4 && strings.Contains(lower, tok) {
				sig.HasLocation = true
				break
			}
		}
	}
	if phone := DigitsOnly(params.Phone); len(phone) >= 7 {
		for _, m := range usPhone.FindAllString(text, -1) {
			if strings.HasSuffix(DigitsOnly(m), phone) || strings.HasSuffix(phone, DigitsOnly(m)) {
				sig.HasPhone = true
				break
			}
		}
		if !sig.HasPhone && strings.Contains(DigitsOnly(text), phone) {
			sig.HasPhone = true
		}
	}
	if email := strings.ToLower(strings.TrimSpace(params.Email)); email != "" {
		sig.HasEmail = strings.Contains(lower, email)
	}
	if user := strings.ToLower(strings.TrimSpace(params.Username)); user != "" {
		sig.HasUsername = strings.Contains(lower, user)
	}
	for _, rel := range params.RelativeList() {
		if strings.Contains(lower, strings.ToLower(rel)) {
			sig.HasKnownRelative = true
			break
		}
	}
	for _, kw := range params.KeywordList() {
		if strings.Contains(lower, kw) {
			sig.KeywordMatches = append(sig.KeywordMatches, kw)
		}
	}
	return sig
}

// CorroborationCount returns the number of distinct signals that fired,
// exact-match included. Keyword matches count once regardless of how many
// keywords hit.
func (s Signals) CorroborationCount() int {
	n := 0
	for _, hit := range []bool{
		s.IsExactMatch, s.HasLocation, s.HasPhone, s.HasEmail, s.HasUsername, s.HasKnownRelative,
	} {
		if hit {
			n++
		}
	}
	if len(s.KeywordMatches) > 0 {
		n++
	}
	return n
}

// ExtractPersonNames pulls candidate person names out of free text.
// Duplicates are collapsed case-insensitively, first spelling wins.
func ExtractPersonNames(text string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range personName.FindAllString(text, -1) {
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// DiscoverRelatives extracts candidate relative names from free text: person
// names sharing a surname with the target, excluding the target themselves.
// Candidates containing the full target name are the target with a title or
// epithet stuck on ("Realtor Jane Doe"), not a relative, and are skipped.
// With no target surname available it returns nothing rather than guessing.
func DiscoverRelatives(text, targetName string) []string {
	target := strings.TrimSpace(targetName)
	if target == "" {
		return []string{}
	}
	parts := strings.Fields(target)
	if len(parts) < 2 {
		return []string{}
	}
	surname := strings.ToLower(parts[len(parts)-1])
	targetLower := strings.ToLower(target)

	out := []string{}
	for _, name := range ExtractPersonNames(text) {
		lower := strings.ToLower(name)
		if strings.Contains(lower, targetLower) {
			continue
		}
		words := strings.Fields(lower)
		if words[len(words)-1] == surname {
			out = append(out, name)
		}
	}
	return out
}

// ContainsEmail reports whether text carries any email address.
func ContainsEmail(text string) bool {
	return emailPattern.MatchString(text)
}
