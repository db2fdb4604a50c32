// Package score computes the 0-100 confidence score written on every
// non-web finding. The formula is a transparent additive heuristic: the same
// fragments and the same payload always produce the same score.
package score

import (
	"encoding/json"
	"strings"

	"dossier/internal/identity"
)

const base = 50

// Confidence scores one non-web finding payload against the fragment set
// that drove the investigation:
//
//	base 50
//	+ fragment-count bonus (35 for >=5, 25 for 4, 15 for 3, 10 for 2)
//	+ max per-item confidenceBoost found in the payload, times 100
//	+ 5 per keyword found in the serialized payload, capped at 15
//
// clamped to [0,100]. Web-class findings never get a score; callers skip
// them entirely.
func Confidence(params identity.SearchParameters, payload map[string]any) int {
	s := float64(base)
	s += float64(fragmentBonus(params.FragmentCount()))
	s += maxBoost(payload) * 100
	s += float64(keywordBonus(params, payload))

	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return int(s)
}

func fragmentBonus(count int) int {
	switch {
	case count >= 5:
		return 35
	case count == 4:
		return 25
	case count == 3:
		return 15
	case count == 2:
		return 10
	default:
		return 0
	}
}

// maxBoost walks the payload for per-item confidenceBoost values, which
// web-adjacent agents attach to individual hits, and returns the largest.
func maxBoost(v any) float64 {
	var best float64
	switch t := v.(type) {
	case map[string]any:
		for key, val := range t {
			if key == "confidenceBoost" {
				if f, ok := asFloat(val); ok && f > best {
					best = f
				}
				continue
			}
			if b := maxBoost(val); b > best {
				best = b
			}
		}
	case []any:
		for _, val := range t {
			if b := maxBoost(val); b > best {
				best = b
			}
		}
	}
	return best
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// keywordBonus counts configured keywords that appear verbatim in the
// serialized payload, case-insensitive, 5 points each up to 15.
func keywordBonus(params identity.SearchParameters, payload map[string]any) int {
	keywords := params.KeywordList()
	if len(keywords) == 0 || len(payload) == 0 {
		return 0
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	text := strings.ToLower(string(raw))
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	bonus := 5 * matches
	if bonus > 15 {
		bonus = 15
	}
	return bonus
}
