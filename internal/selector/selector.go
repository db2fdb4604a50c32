// Package selector maps identity fragments to the lookup tasks they justify.
// Each builder is a pure function of the fragment set: no I/O, no blocking,
// string and table work only. The dispatcher runs whatever comes out.
package selector

import (
	"fmt"
	"strings"

	"dossier/internal/agent"
	"dossier/internal/identity"
	"dossier/internal/queries"
)

// Default source labels per agent kind. The business-registry source comes
// from the state table instead.
const (
	srcPeopleSearch   = "truepeoplesearch.com"
	srcSocialProfiles = "social-searcher.com"
	srcUsernameScan   = "whatsmyname.app"
	srcBreachCheck    = "haveibeenpwned.com"
	srcEmailEnum      = "holehe"
	srcEmailIntel     = "epieos.com"
	srcPhoneLookup    = "numverify.com"
	srcGeocode        = "nominatim.openstreetmap.org"
	srcProperty       = "propertyshark.com"
	srcCourtRecords   = "unicourt.com"
	srcVoterRecords   = "voterrecords.com"
	srcRelatives      = "familytreenow.com"
	srcWeb            = "web"
)

// registryFanOutStates is the registry set queried when a name is supplied
// without an address. With an address, the address builder emits the single
// state-specific task instead.
var registryFanOutStates = []string{"FL", "DE", "NY", "CA", "TX"}

// BuilderTasks pairs a builder ID with the tasks it emitted. Builders that
// emit nothing are omitted from Select's output.
type BuilderTasks struct {
	Builder string
	Tasks   []agent.Task
}

// Select runs every builder against the fragment set, in fixed order, and
// returns the non-empty results. Web-search query candidates come from the
// query generator; each candidate is routed to the builder that owns its
// driving fragment, so a single-fragment input never picks up tasks from
// another fragment's builder.
func Select(params identity.SearchParameters, topQueries []queries.Candidate) []BuilderTasks {
	byOwner := routeQueries(topQueries)

	var out []BuilderTasks
	add := func(builder string, tasks []agent.Task) {
		if len(tasks) > 0 {
			out = append(out, BuilderTasks{Builder: builder, Tasks: tasks})
		}
	}

	add("name", buildName(params, byOwner["name"]))
	add("email", buildEmail(params, byOwner["email"]))
	add("phone", buildPhone(params, byOwner["phone"]))
	add("username", buildUsername(params, byOwner["username"]))
	add("address", buildAddress(params))
	add("business", buildBusiness(params))
	add("records", buildRecords(params))
	add("relatives", buildRelatives(params))
	return out
}

// Tasks flattens the builder output into the dispatch list, preserving
// builder order then emission order. This order is the merge order.
func Tasks(selected []BuilderTasks) []agent.Task {
	var out []agent.Task
	for _, bt := range selected {
		out = append(out, bt.Tasks...)
	}
	return out
}

// routeQueries groups query candidates under the builder owning the
// fragment that produced them, using the generator's label prefix.
func routeQueries(cands []queries.Candidate) map[string][]queries.Candidate {
	owners := map[string]string{
		"name_exact":     "name",
		"name_location":  "name",
		"name_keyword":   "name",
		"name_relative":  "relatives",
		"name_username":  "username",
		"email_exact":    "email",
		"username_exact": "username",
		"phone_exact":    "phone",
		"address_exact":  "address",
	}
	out := map[string][]queries.Candidate{}
	for _, c := range cands {
		owner, ok := owners[c.Label]
		if !ok {
			owner = "name"
		}
		// Relative connection queries are emitted by the relative builder
		// itself; dropping them here avoids duplicate web tasks.
		if owner == "relatives" {
			continue
		}
		out[owner] = append(out[owner], c)
	}
	return out
}

func webTask(c queries.Candidate, params identity.SearchParameters) agent.Task {
	p := params
	return agent.Task{
		Kind:     agent.KindWebSearch,
		Target:   c.Query,
		Priority: c.Value,
		Source:   srcWeb,
		Context:  &p,
	}
}

func buildName(params identity.SearchParameters, qs []queries.Candidate) []agent.Task {
	name := strings.TrimSpace(params.FullName)
	if name == "" {
		return nil
	}
	p := params
	tasks := []agent.Task{
		{Kind: agent.KindPeopleSearch, Target: name, Priority: 1, Source: srcPeopleSearch, Context: &p},
		{Kind: agent.KindSocialProfiles, Target: name, Priority: 0.9, Source: srcSocialProfiles, Context: &p},
	}
	for _, c := range qs {
		tasks = append(tasks, webTask(c, params))
	}
	return tasks
}

func buildEmail(params identity.SearchParameters, qs []queries.Candidate) []agent.Task {
	email := strings.TrimSpace(params.Email)
	if email == "" {
		return nil
	}
	p := params
	tasks := []agent.Task{
		{Kind: agent.KindEmailIntel, Target: email, Priority: 1, Source: srcEmailIntel, Context: &p},
		{Kind: agent.KindBreachCheck, Target: email, Priority: 1, Source: srcBreachCheck, Context: &p},
		{Kind: agent.KindEmailEnum, Target: email, Priority: 0.9, Source: srcEmailEnum, Context: &p},
	}
	for _, c := range qs {
		tasks = append(tasks, webTask(c, params))
	}
	// Cross-agent inference: a local-part that looks like a real username
	// justifies username-style scans on it.
	if local := identity.EmailLocalPart(email); identity.PlausibleUsername(local) {
		tasks = append(tasks,
			agent.Task{Kind: agent.KindUsernameScan, Target: local, Priority: 0.8, Source: srcUsernameScan, Context: &p},
			agent.Task{Kind: agent.KindSocialProfiles, Target: local, Priority: 0.7, Source: srcSocialProfiles, Context: &p},
		)
	}
	return tasks
}

func buildPhone(params identity.SearchParameters, qs []queries.Candidate) []agent.Task {
	if len(identity.DigitsOnly(params.Phone)) < 7 {
		return nil
	}
	p := params
	tasks := []agent.Task{
		{Kind: agent.KindPhoneLookup, Target: strings.TrimSpace(params.Phone), Priority: 1, Source: srcPhoneLookup, Context: &p},
	}
	for _, c := range qs {
		tasks = append(tasks, webTask(c, params))
	}
	return tasks
}

func buildUsername(params identity.SearchParameters, qs []queries.Candidate) []agent.Task {
	user := strings.TrimSpace(params.Username)
	if user == "" {
		return nil
	}
	p := params
	tasks := []agent.Task{
		{Kind: agent.KindUsernameScan, Target: user, Priority: 1, Source: srcUsernameScan, Context: &p},
		{Kind: agent.KindSocialProfiles, Target: user, Priority: 0.9, Source: srcSocialProfiles, Context: &p},
	}
	for _, c := range qs {
		tasks = append(tasks, webTask(c, params))
	}
	return tasks
}

// buildAddress emits a geocode task, a property-records task, two web-search
// tasks, and, when a US state is detected in the address, the state-specific
// business-registry task.
func buildAddress(params identity.SearchParameters) []agent.Task {
	addr := strings.TrimSpace(params.Address)
	if addr == "" {
		return nil
	}
	p := params
	tasks := []agent.Task{
		{Kind: agent.KindGeocode, Target: addr, Priority: 1, Source: srcGeocode, Context: &p},
		{Kind: agent.KindPropertyRecords, Target: addr, Priority: 1, Source: srcProperty, Context: &p},
		webTask(queries.Candidate{Query: fmt.Sprintf("%q", addr), Value: 0.6, Label: "address_exact"}, params),
	}
	if name := strings.TrimSpace(params.FullName); name != "" {
		tasks = append(tasks, webTask(queries.Candidate{
			Query: fmt.Sprintf("%q %q", name, addr), Value: 0.55, Label: "address_name",
		}, params))
	} else {
		tasks = append(tasks, webTask(queries.Candidate{
			Query: fmt.Sprintf("%q owner", addr), Value: 0.55, Label: "address_owner",
		}, params))
	}
	if reg, ok := identity.DetectStateRegistry(addr); ok {
		target := strings.TrimSpace(params.FullName)
		if target == "" {
			target = addr
		}
		tasks = append(tasks, agent.Task{
			Kind: agent.KindBusinessRegistry, Target: target, Priority: 0.8, Source: reg.Domain, Context: &p,
		})
	}
	return tasks
}

// buildBusiness fires only when a name is present and no address was given;
// the address builder already covers the state-specific case. Without a
// state to narrow on, the lookup fans out across the default registry set.
func buildBusiness(params identity.SearchParameters) []agent.Task {
	name := strings.TrimSpace(params.FullName)
	if name == "" || strings.TrimSpace(params.Address) != "" {
		return nil
	}
	p := params
	var tasks []agent.Task
	for _, code := range registryFanOutStates {
		reg, ok := identity.RegistryForState(code)
		if !ok {
			continue
		}
		tasks = append(tasks, agent.Task{
			Kind: agent.KindBusinessRegistry, Target: name, Priority: 0.7, Source: reg.Domain, Context: &p,
		})
	}
	return tasks
}

// buildRecords mirrors buildBusiness's mutual exclusion: name present, no
// address.
func buildRecords(params identity.SearchParameters) []agent.Task {
	name := strings.TrimSpace(params.FullName)
	if name == "" || strings.TrimSpace(params.Address) != "" {
		return nil
	}
	p := params
	return []agent.Task{
		{Kind: agent.KindCourtRecords, Target: name, Priority: 0.7, Source: srcCourtRecords, Context: &p},
		{Kind: agent.KindVoterRecords, Target: name, Priority: 0.7, Source: srcVoterRecords, Context: &p},
	}
}

// buildRelatives fires once per known relative: a connection web search plus
// a people search scoped to the relative.
func buildRelatives(params identity.SearchParameters) []agent.Task {
	rels := params.RelativeList()
	if len(rels) == 0 {
		return nil
	}
	p := params
	name := strings.TrimSpace(params.FullName)
	var tasks []agent.Task
	for _, rel := range rels {
		query := fmt.Sprintf("%q", rel)
		if name != "" {
			query = fmt.Sprintf("%q %q", name, rel)
		}
		tasks = append(tasks,
			webTask(queries.Candidate{Query: query, Value: 0.75, Label: "name_relative"}, params),
			agent.Task{Kind: agent.KindRelativeSearch, Target: rel, Priority: 0.7, Source: srcRelatives, Context: &p},
		)
	}
	return tasks
}
