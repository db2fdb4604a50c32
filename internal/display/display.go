// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, logs, and docs. Keep raw codes for
// JSON fields, storage keys, and equality comparisons.
package display

import "strings"

// --- Agent Types ---

var agentTypes = map[string]string{
	"WebSearch":        "Web Search",
	"PeopleSearch":     "People Search",
	"SocialProfiles":   "Social Profiles",
	"UsernameScan":     "Username Scan",
	"BreachCheck":      "Breach Check",
	"EmailEnum":        "Email Enumeration",
	"EmailIntel":       "Email Intelligence",
	"PhoneLookup":      "Phone Lookup",
	"Geocode":          "Geocoding",
	"PropertyRecords":  "Property Records",
	"BusinessRegistry": "Business Registry",
	"CourtRecords":     "Court Records",
	"VoterRecords":     "Voter Records",
	"RelativeSearch":   "Relative Search",
	"System":           "System",
}

// AgentType returns the human-readable name for an agent type key.
// Unknown keys are returned as-is.
func AgentType(key string) string {
	if name, ok := agentTypes[key]; ok {
		return name
	}
	return key
}

// --- Statuses ---

var taskStatuses = map[string]string{
	"ok":      "OK",
	"error":   "Errored",
	"no_data": "No Data",
	"failed":  "Failed",
}

// TaskStatus returns the human-readable name for a diagnostic status.
func TaskStatus(code string) string {
	if name, ok := taskStatuses[code]; ok {
		return name
	}
	return code
}

var verificationStatuses = map[string]string{
	"needs_review": "Needs Review",
	"verified":     "Verified",
	"inaccurate":   "Inaccurate",
}

// VerificationStatus returns the human-readable name for a finding's
// verification status.
func VerificationStatus(code string) string {
	if name, ok := verificationStatuses[code]; ok {
		return name
	}
	return code
}

var investigationStatuses = map[string]string{
	"active":   "Active",
	"complete": "Complete",
}

// InvestigationStatus returns the human-readable name for an investigation
// status.
func InvestigationStatus(code string) string {
	if name, ok := investigationStatuses[code]; ok {
		return name
	}
	return code
}

// AgentList humanizes a slice of agent type keys.
// ["PeopleSearch", "BreachCheck"] -> "People Search, Breach Check"
func AgentList(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = AgentType(k)
	}
	return strings.Join(names, ", ")
}
