package identity

import "strings"

// StateRegistry is one US state's business-entity registry.
type StateRegistry struct {
	Code   string // two-letter state code
	Name   string // registry name as rendered to users
	Domain string // registry domain, used as the finding source
}

// stateRegistries maps US state codes to their business-entity registries.
// Table-driven so the address builder can emit a state-specific registry task
// without per-state code paths.
var stateRegistries = map[string]StateRegistry{
	"AZ": {"AZ", "Arizona Corporation Commission", "ecorp.azcc.gov"},
	"CA": {"CA", "California Secretary of State (bizfile)", "bizfileonline.sos.ca.gov"},
	"CO": {"CO", "Colorado Secretary of State", "coloradosos.gov"},
	"DE": {"DE", "Delaware Division of Corporations", "icis.corp.delaware.gov"},
	"FL": {"FL", "Florida Sunbiz", "search.sunbiz.org"},
	"GA": {"GA", "Georgia Corporations Division", "ecorp.sos.ga.gov"},
	"IL": {"IL", "Illinois Secretary of State", "apps.ilsos.gov"},
	"MA": {"MA", "Massachusetts Corporations Division", "corp.sec.state.ma.us"},
	"MI": {"MI", "Michigan Corporations Division", "cofs.lara.state.mi.us"},
	"NC": {"NC", "North Carolina Secretary of State", "sosnc.gov"},
	"NJ": {"NJ", "New Jersey Business Records", "njportal.com"},
	"NV": {"NV", "Nevada SilverFlume", "esos.nv.gov"},
	"NY": {"NY", "New York Department of State", "apps.dos.ny.gov"},
	"OH": {"OH", "Ohio Secretary of State", "businesssearch.ohiosos.gov"},
	"PA": {"PA", "Pennsylvania Business Search", "file.dos.pa.gov"},
	"TX": {"TX", "Texas SOSDirect", "mycpa.cpa.state.tx.us"},
	"VA": {"VA", "Virginia SCC Clerk's Office", "cis.scc.virginia.gov"},
	"WA": {"WA", "Washington Corporations Search", "ccfs.sos.wa.gov"},
}

// stateNames maps spelled-out state names (lower-case) to codes, for
// addresses that write the state out in full.
var stateNames = map[string]string{
	"arizona": "AZ", "california": "CA", "colorado": "CO", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "illinois": "IL", "massachusetts": "MA",
	"michigan": "MI", "north carolina": "NC", "new jersey": "NJ", "nevada": "NV",
	"new york": "NY", "ohio": "OH", "pennsylvania": "PA", "texas": "TX",
	"virginia": "VA", "washington": "WA",
}

// RegistryForState returns the registry for a two-letter state code.
func RegistryForState(code string) (StateRegistry, bool) {
	r, ok := stateRegistries[strings.ToUpper(code)]
	return r, ok
}

// DetectStateRegistry scans an address fragment for a US state and returns
// the matching business registry. Two-letter codes must stand alone as a
// token ("Miami, FL 33139"); spelled-out names match case-insensitively.
func DetectStateRegistry(address string) (StateRegistry, bool) {
	if strings.TrimSpace(address) == "" {
		return StateRegistry{}, false
	}
	for _, tok := range strings.FieldsFunc(address, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '\t'
	}) {
		if len(tok) != 2 {
			continue
		}
		if r, ok := stateRegistries[strings.ToUpper(tok)]; ok && tok == strings.ToUpper(tok) {
			return r, true
		}
	}
	lower := strings.ToLower(address)
	for name, code := range stateNames {
		if strings.Contains(lower, name) {
			return stateRegistries[code], true
		}
	}
	return StateRegistry{}, false
}
