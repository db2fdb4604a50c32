package score

import (
	"testing"

	"dossier/internal/identity"
)

func TestConfidence_FragmentBonusTiers(t *testing.T) {
	payload := map[string]any{"name": "Jane Doe"}
	cases := []struct {
		params identity.SearchParameters
		want   int
	}{
		{identity.SearchParameters{FullName: "Jane Doe"}, 50},
		{identity.SearchParameters{FullName: "Jane Doe", Email: "j@x.com"}, 60},
		{identity.SearchParameters{FullName: "Jane Doe", Email: "j@x.com", Phone: "3055550142"}, 65},
		{identity.SearchParameters{FullName: "Jane Doe", Email: "j@x.com", Phone: "3055550142", Username: "jdoe"}, 75},
		{identity.SearchParameters{FullName: "Jane Doe", Email: "j@x.com", Phone: "3055550142", Username: "jdoe", Address: "1 Main St"}, 85},
	}
	for i, tc := range cases {
		if got := Confidence(tc.params, payload); got != tc.want {
			t.Errorf("case %d: score = %d, want %d", i, got, tc.want)
		}
	}
}

func TestConfidence_BoostAndKeywordsClampTo100(t *testing.T) {
	params := identity.SearchParameters{
		FullName: "Jane Doe", Email: "j@x.com", Phone: "3055550142",
		Username: "jdoe", Address: "1 Main St",
		Keywords: "realtor, sailing, miami, diving",
	}
	payload := map[string]any{
		"profiles": []any{
			map[string]any{"site": "x", "confidenceBoost": 0.2},
			map[string]any{"site": "y", "confidenceBoost": 0.45},
		},
		"bio": "realtor in miami, loves sailing and diving",
	}
	// 50 + 35 + 45 + 15 would be 145; must clamp.
	if got := Confidence(params, payload); got != 100 {
		t.Fatalf("score = %d, want 100", got)
	}
}

func TestConfidence_BoostTakesMax(t *testing.T) {
	params := identity.SearchParameters{FullName: "Jane Doe"}
	payload := map[string]any{
		"items": []any{
			map[string]any{"confidenceBoost": 0.1},
			map[string]any{"confidenceBoost": 0.3},
		},
	}
	// 50 + 0 + 30 + 0.
	if got := Confidence(params, payload); got != 80 {
		t.Fatalf("score = %d, want 80", got)
	}
}

func TestConfidence_KeywordCap(t *testing.T) {
	params := identity.SearchParameters{
		FullName: "Jane Doe",
		Keywords: "alpha, beta, gamma, delta",
	}
	payload := map[string]any{"notes": "alpha beta gamma delta"}
	// 50 + 10 (two fragments) + min(5*4, 15).
	if got := Confidence(params, payload); got != 75 {
		t.Fatalf("score = %d, want 75", got)
	}
}

func TestConfidence_EmptyPayloadStillScored(t *testing.T) {
	params := identity.SearchParameters{FullName: "Jane Doe", Keywords: "realtor"}
	if got := Confidence(params, map[string]any{}); got != 60 {
		t.Fatalf("score = %d, want 60", got)
	}
}

func TestConfidence_AlwaysInRange(t *testing.T) {
	params := identity.SearchParameters{
		FullName: "Jane Doe", Email: "j@x.com", Phone: "3055550142",
		Username: "jdoe", Address: "1 Main St", Keywords: "a, b, c, d, e, f",
	}
	payloads := []map[string]any{
		nil,
		{},
		{"confidenceBoost": 5.0},
		{"deep": map[string]any{"deeper": []any{map[string]any{"confidenceBoost": 0.99}}}},
		{"text": "a b c d e f"},
	}
	for i, p := range payloads {
		got := Confidence(params, p)
		if got < 0 || got > 100 {
			t.Errorf("payload %d: score %d out of range", i, got)
		}
	}
}
