package display

import "testing"

func TestAgentType(t *testing.T) {
	if got := AgentType("BreachCheck"); got != "Breach Check" {
		t.Errorf("AgentType(BreachCheck) = %q", got)
	}
	if got := AgentType("Mystery"); got != "Mystery" {
		t.Errorf("unknown key should pass through, got %q", got)
	}
}

func TestStatuses(t *testing.T) {
	if got := TaskStatus("no_data"); got != "No Data" {
		t.Errorf("TaskStatus(no_data) = %q", got)
	}
	if got := VerificationStatus("needs_review"); got != "Needs Review" {
		t.Errorf("VerificationStatus(needs_review) = %q", got)
	}
	if got := InvestigationStatus("complete"); got != "Complete" {
		t.Errorf("InvestigationStatus(complete) = %q", got)
	}
}

func TestAgentList(t *testing.T) {
	got := AgentList([]string{"PeopleSearch", "WebSearch"})
	if got != "People Search, Web Search" {
		t.Errorf("AgentList = %q", got)
	}
}
