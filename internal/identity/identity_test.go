package identity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate_EmptyParams(t *testing.T) {
	if err := (SearchParameters{}).Validate(); err != ErrNoFragments {
		t.Fatalf("expected ErrNoFragments, got %v", err)
	}
	if err := (SearchParameters{Phone: "  "}).Validate(); err != ErrNoFragments {
		t.Fatalf("whitespace-only fragment should not validate, got %v", err)
	}
	if err := (SearchParameters{Username: "jdoe"}).Validate(); err != nil {
		t.Fatalf("one fragment should validate, got %v", err)
	}
}

func TestFragmentCount(t *testing.T) {
	p := SearchParameters{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Keywords: "miami, realtor",
		// known relatives do not count
		KnownRelatives: "John Doe",
	}
	if got := p.FragmentCount(); got != 3 {
		t.Fatalf("FragmentCount = %d, want 3", got)
	}
}

func TestKeywordList_LowercasedAndSplit(t *testing.T) {
	p := SearchParameters{Keywords: "Miami, Realtor; Boat Club\nGolf"}
	want := []string{"miami", "realtor", "boat club", "golf"}
	if diff := cmp.Diff(want, p.KeywordList()); diff != "" {
		t.Fatalf("KeywordList mismatch (-want +got):\n%s", diff)
	}
}

func TestRelativeList_KeepsCasing(t *testing.T) {
	p := SearchParameters{KnownRelatives: "John Doe, Mary Doe"}
	want := []string{"John Doe", "Mary Doe"}
	if diff := cmp.Diff(want, p.RelativeList()); diff != "" {
		t.Fatalf("RelativeList mismatch (-want +got):\n%s", diff)
	}
}

// P5 from the property list: scheme, www, casing, trailing slash, and query
// must not affect the dedup key.
func TestNormalizeURL_EquivalentForms(t *testing.T) {
	a := NormalizeURL("https://WWW.Example.com/page/")
	b := NormalizeURL("http://example.com/page")
	if a != b {
		t.Fatalf("normalize mismatch: %q vs %q", a, b)
	}
	if a != "example.com/page" {
		t.Fatalf("unexpected key: %q", a)
	}
}

func TestNormalizeURL_DropsQueryAndFragment(t *testing.T) {
	cases := map[string]string{
		"https://site.org/profile?id=5":      "site.org/profile",
		"http://www.site.org/profile#bio":    "site.org/profile",
		"//cdn.site.org/a/b/":                "cdn.site.org/a/b",
		"site.org":                           "site.org",
		"  HTTPS://Site.org/X/ ":             "site.org/x",
	}
	for in, want := range cases {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchSignals(t *testing.T) {
	params := SearchParameters{
		FullName:       "Jane Doe",
		Phone:          "(555) 123-4567",
		Email:          "jane@example.com",
		Username:       "jdoe88",
		Address:        "100 Ocean Dr, Miami, FL 33139",
		Keywords:       "realtor, sailing",
		KnownRelatives: "John Doe",
	}
	text := "Jane Doe is a realtor in Miami. Contact jane@example.com or 555-123-4567. Her brother John Doe goes sailing with jdoe88."
	sig := MatchSignals(text, params)

	if !sig.IsExactMatch || !sig.HasLocation || !sig.HasPhone || !sig.HasEmail || !sig.HasUsername || !sig.HasKnownRelative {
		t.Fatalf("expected all signals to fire, got %+v", sig)
	}
	wantKw := []string{"realtor", "sailing"}
	if diff := cmp.Diff(wantKw, sig.KeywordMatches); diff != "" {
		t.Fatalf("keyword matches (-want +got):\n%s", diff)
	}
	if got := sig.CorroborationCount(); got != 7 {
		t.Fatalf("CorroborationCount = %d, want 7", got)
	}
}

func TestMatchSignals_NoFalsePositives(t *testing.T) {
	params := SearchParameters{FullName: "Jane Doe", Phone: "5551234567"}
	sig := MatchSignals("An unrelated page about gardening.", params)
	if sig.IsExactMatch || sig.HasPhone {
		t.Fatalf("no signals should fire, got %+v", sig)
	}
	if sig.CorroborationCount() != 0 {
		t.Fatalf("CorroborationCount should be 0, got %d", sig.CorroborationCount())
	}
}

func TestDiscoverRelatives_SharedSurname(t *testing.T) {
	text := "Jane Doe lives with Mark Doe and works with Alice Smith."
	got := DiscoverRelatives(text, "Jane Doe")
	want := []string{"Mark Doe"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("relatives (-want +got):\n%s", diff)
	}
}

func TestDiscoverRelatives_SkipsTitledTarget(t *testing.T) {
	// The name extractor picks up "Realtor Jane Doe" as a three-word
	// candidate; a candidate containing the target's own name is not a
	// relative.
	text := "Jane Doe - Realtor Jane Doe sells homes. Her sister Amy Doe."
	got := DiscoverRelatives(text, "Jane Doe")
	want := []string{"Amy Doe"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("relatives (-want +got):\n%s", diff)
	}
}

func TestDiscoverRelatives_NoTarget(t *testing.T) {
	if got := DiscoverRelatives("Mark Doe", ""); len(got) != 0 {
		t.Fatalf("expected none without a target, got %v", got)
	}
	if got := DiscoverRelatives("Mark Doe", "Cher"); len(got) != 0 {
		t.Fatalf("expected none for mononym target, got %v", got)
	}
}

func TestDetectStateRegistry(t *testing.T) {
	r, ok := DetectStateRegistry("100 Ocean Dr, Miami, FL 33139")
	if !ok || r.Code != "FL" || r.Domain != "search.sunbiz.org" {
		t.Fatalf("FL detection failed: %+v ok=%v", r, ok)
	}
	r, ok = DetectStateRegistry("12 Main St, Austin, Texas")
	if !ok || r.Code != "TX" {
		t.Fatalf("spelled-out state detection failed: %+v ok=%v", r, ok)
	}
	if _, ok := DetectStateRegistry("10 Downing Street, London"); ok {
		t.Fatal("non-US address should not match a registry")
	}
}

func TestEmailLocalPart_AndPlausibility(t *testing.T) {
	if got := EmailLocalPart("jdoe@example.com"); got != "jdoe" {
		t.Fatalf("local part = %q", got)
	}
	if got := EmailLocalPart("no-at-sign"); got != "" {
		t.Fatalf("expected empty for bad address, got %q", got)
	}
	if !PlausibleUsername("jdoe") {
		t.Fatal("jdoe should be plausible")
	}
	if PlausibleUsername("abc") || PlausibleUsername("info") {
		t.Fatal("short or role-address local parts are not plausible usernames")
	}
}
