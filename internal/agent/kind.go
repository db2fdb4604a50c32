// Package agent defines the uniform lookup-agent contract: a closed set of
// agent kinds, the immutable task unit, the result envelope, and the registry
// that routes kinds to invokers. Adapters are black boxes behind the Invoker
// interface; their transport is their own business.
package agent

import "fmt"

// Kind identifies one lookup agent. The set is closed: dispatch routes on
// the enum, never on free-form strings, so a typo is a compile error instead
// of a silently dropped task.
type Kind int

const (
	KindUnknown Kind = iota
	KindWebSearch
	KindPeopleSearch
	KindSocialProfiles
	KindUsernameScan
	KindBreachCheck
	KindEmailEnum
	KindEmailIntel
	KindPhoneLookup
	KindGeocode
	KindPropertyRecords
	KindBusinessRegistry
	KindCourtRecords
	KindVoterRecords
	KindRelativeSearch
	KindSystem
)

// kindNames holds the capitalized storage keys. Downstream consumers
// string-match on these in the findings table, so they are part of the
// persisted contract.
var kindNames = map[Kind]string{
	KindWebSearch:        "WebSearch",
	KindPeopleSearch:     "PeopleSearch",
	KindSocialProfiles:   "SocialProfiles",
	KindUsernameScan:     "UsernameScan",
	KindBreachCheck:      "BreachCheck",
	KindEmailEnum:        "EmailEnum",
	KindEmailIntel:       "EmailIntel",
	KindPhoneLookup:      "PhoneLookup",
	KindGeocode:          "Geocode",
	KindPropertyRecords:  "PropertyRecords",
	KindBusinessRegistry: "BusinessRegistry",
	KindCourtRecords:     "CourtRecords",
	KindVoterRecords:     "VoterRecords",
	KindRelativeSearch:   "RelativeSearch",
	KindSystem:           "System",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

// String returns the capitalized storage key for the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a storage key back to its Kind. Returns KindUnknown and
// false for keys outside the closed set.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// IsWebSearch reports whether the kind belongs to the web-search class whose
// outcomes are merged into a single finding per investigation.
func (k Kind) IsWebSearch() bool {
	return k == KindWebSearch
}

// Kinds returns every dispatchable kind (KindSystem excluded) in a stable
// order. Used by display helpers and the CLI.
func Kinds() []Kind {
	return []Kind{
		KindWebSearch, KindPeopleSearch, KindSocialProfiles, KindUsernameScan,
		KindBreachCheck, KindEmailEnum, KindEmailIntel, KindPhoneLookup,
		KindGeocode, KindPropertyRecords, KindBusinessRegistry,
		KindCourtRecords, KindVoterRecords, KindRelativeSearch,
	}
}
