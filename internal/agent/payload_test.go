package agent

import (
	"strings"
	"testing"
)

func TestValidatePayload_WebClass(t *testing.T) {
	good := `{"confirmedItems":[],"possibleItems":[],"discoveredRelatives":[],"queriesUsed":["q"]}`
	if err := ValidatePayload(KindWebSearch, []byte(good)); err != nil {
		t.Fatalf("valid web payload rejected: %v", err)
	}

	missing := `{"confirmedItems":[],"possibleItems":[],"queriesUsed":[]}`
	err := ValidatePayload(KindWebSearch, []byte(missing))
	if err == nil || !strings.Contains(err.Error(), "discoveredRelatives") {
		t.Fatalf("err = %v, want missing discoveredRelatives", err)
	}

	notArray := `{"confirmedItems":{},"possibleItems":[],"discoveredRelatives":[],"queriesUsed":[]}`
	if err := ValidatePayload(KindWebSearch, []byte(notArray)); err == nil {
		t.Fatal("object in array field accepted")
	}
}

func TestValidatePayload_System(t *testing.T) {
	good := `{"entries":[{"agentType":"BreachCheck","status":"error","error":"boom"}],"failedAgents":["BreachCheck"]}`
	if err := ValidatePayload(KindSystem, []byte(good)); err != nil {
		t.Fatalf("valid system payload rejected: %v", err)
	}

	badStatus := `{"entries":[{"agentType":"BreachCheck","status":"exploded"}]}`
	if err := ValidatePayload(KindSystem, []byte(badStatus)); err == nil {
		t.Fatal("unknown diagnostic status accepted")
	}
	noAgent := `{"entries":[{"status":"ok"}]}`
	if err := ValidatePayload(KindSystem, []byte(noAgent)); err == nil {
		t.Fatal("entry without agentType accepted")
	}
}

func TestValidatePayload_MustBeObject(t *testing.T) {
	for _, raw := range []string{`[]`, `"text"`, `42`, `not json`} {
		if err := ValidatePayload(KindBreachCheck, []byte(raw)); err == nil {
			t.Errorf("ValidatePayload(%s) accepted non-object", raw)
		}
	}
	if err := ValidatePayload(KindBreachCheck, []byte(`{"anything":1}`)); err != nil {
		t.Fatalf("plain object rejected for structured kind: %v", err)
	}
}
