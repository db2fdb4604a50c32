package selector

import (
	"strings"
	"testing"

	"dossier/internal/agent"
	"dossier/internal/identity"
	"dossier/internal/queries"
)

func selectAll(t *testing.T, params identity.SearchParameters) []BuilderTasks {
	t.Helper()
	cands := queries.TopN(queries.Generate(params), queries.DefaultTopN)
	return Select(params, cands)
}

func kindsOf(tasks []agent.Task) map[agent.Kind]int {
	out := map[agent.Kind]int{}
	for _, task := range tasks {
		out[task.Kind]++
	}
	return out
}

// A name with no address must fire the name, business, and records builders,
// with at least one people search and one Florida Sunbiz officer lookup.
func TestSelect_NameOnlyFansOut(t *testing.T) {
	selected := selectAll(t, identity.SearchParameters{FullName: "Jane Doe"})

	builders := map[string]bool{}
	for _, bt := range selected {
		builders[bt.Builder] = true
	}
	for _, want := range []string{"name", "business", "records"} {
		if !builders[want] {
			t.Errorf("builder %q did not fire: %v", want, builders)
		}
	}

	tasks := Tasks(selected)
	kinds := kindsOf(tasks)
	if kinds[agent.KindPeopleSearch] == 0 {
		t.Error("expected a people-search task")
	}
	sunbiz := false
	for _, task := range tasks {
		if task.Kind == agent.KindBusinessRegistry && strings.Contains(task.Source, "sunbiz") {
			sunbiz = true
			if task.Target != "Jane Doe" {
				t.Errorf("registry target = %q", task.Target)
			}
		}
	}
	if !sunbiz {
		t.Error("expected a sunbiz officer lookup in the registry fan-out")
	}
	if kinds[agent.KindCourtRecords] == 0 || kinds[agent.KindVoterRecords] == 0 {
		t.Errorf("records builder incomplete: %v", kinds)
	}
}

// An email whose local-part looks like a handle justifies six or more
// tasks, including a derived username scan on the local-part.
func TestSelect_EmailOnlyDerivesUsername(t *testing.T) {
	selected := selectAll(t, identity.SearchParameters{Email: "jdoe@example.com"})
	if len(selected) != 1 || selected[0].Builder != "email" {
		t.Fatalf("builders = %+v", selected)
	}
	tasks := selected[0].Tasks
	if len(tasks) < 6 {
		t.Fatalf("expected at least 6 tasks, got %d: %+v", len(tasks), tasks)
	}
	kinds := kindsOf(tasks)
	for _, want := range []agent.Kind{agent.KindEmailIntel, agent.KindBreachCheck, agent.KindEmailEnum, agent.KindWebSearch} {
		if kinds[want] == 0 {
			t.Errorf("missing %s task", want)
		}
	}
	derived := false
	for _, task := range tasks {
		if task.Kind == agent.KindUsernameScan && task.Target == "jdoe" {
			derived = true
		}
	}
	if !derived {
		t.Error("expected a username scan on the derived local-part")
	}
}

// Role addresses never derive username tasks.
func TestSelect_RoleEmailNoDerivedUsername(t *testing.T) {
	selected := selectAll(t, identity.SearchParameters{Email: "info@example.com"})
	for _, task := range Tasks(selected) {
		if task.Kind == agent.KindUsernameScan {
			t.Fatalf("role address must not derive a username scan: %+v", task)
		}
	}
}

// Single-fragment inputs must only produce tasks from that fragment's
// builder.
func TestSelect_SingleFragmentIsolation(t *testing.T) {
	cases := []struct {
		params  identity.SearchParameters
		builder string
	}{
		{identity.SearchParameters{Email: "jdoe@example.com"}, "email"},
		{identity.SearchParameters{Phone: "(305) 555-0142"}, "phone"},
		{identity.SearchParameters{Username: "jdoe88"}, "username"},
		{identity.SearchParameters{Address: "742 Evergreen Ter, Springfield"}, "address"},
		{identity.SearchParameters{KnownRelatives: "John Doe"}, "relatives"},
	}
	for _, tc := range cases {
		selected := selectAll(t, tc.params)
		if len(selected) != 1 {
			t.Errorf("%s: builders fired = %+v", tc.builder, selected)
			continue
		}
		if selected[0].Builder != tc.builder {
			t.Errorf("got builder %q, want %q", selected[0].Builder, tc.builder)
		}
	}
}

// The address builder suppresses the business and records builders and emits
// the single state-specific registry task instead of the fan-out.
func TestSelect_AddressSuppressesFanOut(t *testing.T) {
	selected := selectAll(t, identity.SearchParameters{
		FullName: "Jane Doe",
		Address:  "100 Ocean Dr, Miami, FL 33139",
	})
	for _, bt := range selected {
		if bt.Builder == "business" || bt.Builder == "records" {
			t.Fatalf("builder %q must not fire with an address present", bt.Builder)
		}
	}

	var registry []agent.Task
	var addressTasks []agent.Task
	for _, bt := range selected {
		if bt.Builder == "address" {
			addressTasks = bt.Tasks
		}
		for _, task := range bt.Tasks {
			if task.Kind == agent.KindBusinessRegistry {
				registry = append(registry, task)
			}
		}
	}
	if len(registry) != 1 || registry[0].Source != "search.sunbiz.org" {
		t.Fatalf("registry tasks = %+v", registry)
	}

	kinds := kindsOf(addressTasks)
	if kinds[agent.KindGeocode] != 1 || kinds[agent.KindPropertyRecords] != 1 {
		t.Errorf("address builder kinds = %v", kinds)
	}
	if kinds[agent.KindWebSearch] != 2 {
		t.Errorf("address builder web tasks = %d, want 2", kinds[agent.KindWebSearch])
	}
}

// No state in the address, no registry task at all.
func TestSelect_AddressWithoutState(t *testing.T) {
	selected := selectAll(t, identity.SearchParameters{Address: "742 Evergreen Ter, Springfield"})
	for _, task := range Tasks(selected) {
		if task.Kind == agent.KindBusinessRegistry {
			t.Fatalf("unexpected registry task: %+v", task)
		}
	}
}

// One connection web search plus one relative-scoped people search per
// known relative.
func TestSelect_RelativesPerEntry(t *testing.T) {
	selected := selectAll(t, identity.SearchParameters{
		FullName:       "Jane Doe",
		KnownRelatives: "John Doe, Amy Doe",
	})
	var rel []agent.Task
	for _, bt := range selected {
		if bt.Builder == "relatives" {
			rel = bt.Tasks
		}
	}
	if len(rel) != 4 {
		t.Fatalf("relative tasks = %d, want 4: %+v", len(rel), rel)
	}
	kinds := kindsOf(rel)
	if kinds[agent.KindWebSearch] != 2 || kinds[agent.KindRelativeSearch] != 2 {
		t.Fatalf("relative task kinds = %v", kinds)
	}
	if !strings.Contains(rel[0].Target, "Jane Doe") || !strings.Contains(rel[0].Target, "John Doe") {
		t.Fatalf("connection query = %q", rel[0].Target)
	}
}

// Every task carries a copy of the parameter set for downstream signal
// matching.
func TestSelect_TasksCarryContext(t *testing.T) {
	params := identity.SearchParameters{FullName: "Jane Doe", Keywords: "realtor"}
	for _, task := range Tasks(selectAll(t, params)) {
		if task.Context == nil || task.Context.FullName != "Jane Doe" {
			t.Fatalf("task missing context: %+v", task)
		}
	}
}

func TestSelect_EmptyParams(t *testing.T) {
	if got := Select(identity.SearchParameters{}, nil); len(got) != 0 {
		t.Fatalf("empty params selected %+v", got)
	}
}
