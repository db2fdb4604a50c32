// Package queries generates ranked candidate web-search query strings from
// identity fragments. The orchestrator consumes only the top-N; ranking is a
// static value model, not learned.
package queries

import (
	"fmt"
	"sort"
	"strings"

	"dossier/internal/identity"
)

// Candidate is one ranked query string.
type Candidate struct {
	Query string  `json:"query"`
	Value float64 `json:"value"` // static priority in (0,1]; higher dispatches first
	Label string  `json:"label"` // which combination produced it
}

// DefaultTopN is how many candidates the orchestrator dispatches when the
// config does not say otherwise.
const DefaultTopN = 4

// Generate produces candidates in descending value order. Ties keep
// generation order, which is fragment order, so output is deterministic for
// a fixed parameter set.
func Generate(params identity.SearchParameters) []Candidate {
	var out []Candidate
	add := func(value float64, label, query string) {
		out = append(out, Candidate{Query: query, Value: value, Label: label})
	}

	name := strings.TrimSpace(params.FullName)
	if name != "" {
		add(1.0, "name_exact", fmt.Sprintf("%q", name))
		if city := cityFromAddress(params.Address); city != "" {
			add(0.9, "name_location", fmt.Sprintf("%q %q", name, city))
		}
		for _, kw := range params.KeywordList() {
			add(0.8, "name_keyword", fmt.Sprintf("%q %s", name, kw))
		}
		for _, rel := range params.RelativeList() {
			add(0.75, "name_relative", fmt.Sprintf("%q %q", name, rel))
		}
	}
	if email := strings.TrimSpace(params.Email); email != "" {
		add(0.85, "email_exact", fmt.Sprintf("%q", email))
	}
	if user := strings.TrimSpace(params.Username); user != "" {
		add(0.7, "username_exact", fmt.Sprintf("%q", user))
		if name != "" {
			add(0.6, "name_username", fmt.Sprintf("%q %q", name, user))
		}
	}
	if phone := identity.DigitsOnly(params.Phone); len(phone) >= 7 {
		add(0.65, "phone_exact", fmt.Sprintf("%q", strings.TrimSpace(params.Phone)))
	}
	if addr := strings.TrimSpace(params.Address); addr != "" && name == "" {
		add(0.55, "address_exact", fmt.Sprintf("%q", addr))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// TopN returns the first n candidates, or all of them when fewer exist.
// n <= 0 falls back to DefaultTopN.
func TopN(cands []Candidate, n int) []Candidate {
	if n <= 0 {
		n = DefaultTopN
	}
	if len(cands) <= n {
		return cands
	}
	return cands[:n]
}

// cityFromAddress takes the token after the first comma as the city part of
// a street address ("100 Ocean Dr, Miami, FL" → "Miami"). Best effort only.
func cityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
