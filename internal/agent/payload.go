package agent

import (
	"encoding/json"
	"fmt"
)

// ValidatePayload checks a finding payload against the shape its agent kind
// promises, before it hits storage. Kinds are a closed set, so every variant
// gets an explicit check: the web-search class must carry its fixed item
// buckets, the system record must carry diagnostic entries, and everything
// else must at least be a JSON object.
func ValidatePayload(kind Kind, data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s payload is not a JSON object: %w", kind, err)
	}

	switch {
	case kind.IsWebSearch():
		for _, key := range []string{"confirmedItems", "possibleItems", "discoveredRelatives", "queriesUsed"} {
			raw, ok := doc[key]
			if !ok {
				return fmt.Errorf("%s payload missing %q", kind, key)
			}
			var arr []json.RawMessage
			if err := json.Unmarshal(raw, &arr); err != nil {
				return fmt.Errorf("%s payload field %q is not an array: %w", kind, key, err)
			}
		}
	case kind == KindSystem:
		raw, ok := doc["entries"]
		if !ok {
			return fmt.Errorf("%s payload missing %q", kind, "entries")
		}
		var entries []struct {
			AgentType string `json:"agentType"`
			Status    string `json:"status"`
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("%s payload entries malformed: %w", kind, err)
		}
		for i, e := range entries {
			if e.AgentType == "" || !validDiagnosticStatus(e.Status) {
				return fmt.Errorf("%s payload entry %d invalid: agentType=%q status=%q", kind, i, e.AgentType, e.Status)
			}
		}
	}
	return nil
}

func validDiagnosticStatus(s string) bool {
	switch s {
	case "ok", "error", "no_data", "failed":
		return true
	}
	return false
}
