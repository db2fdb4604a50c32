// Package merge folds the outcomes of every web-search-class task into a
// single payload. One investigation persists at most one web finding, no
// matter how many queries ran.
package merge

import (
	"sort"
	"strings"

	"dossier/internal/agent"
	"dossier/internal/dispatch"
)

// Failure records a web-class task that errored; the orchestrator persists a
// placeholder finding from these so the investigation never looks like the
// searches silently vanished.
type Failure struct {
	Query string
	Err   error
}

// Web merges the web-search-class outcomes in dispatch order. Items are
// deduplicated by normalized URL with first-seen-wins: the first occurrence
// fixes both the surviving item and its bucket. Within one outcome the
// confirmed bucket is folded before the possible bucket, so a page confirmed
// by any earlier query can never be demoted by a later one. Both buckets come
// back sorted by confidence, descending.
//
// Non-web outcomes are ignored. When no web task produced data, Web returns
// (nil, failures).
func Web(outcomes []dispatch.Outcome) (*agent.WebData, []Failure) {
	merged := &agent.WebData{
		ConfirmedItems:      []agent.WebResultItem{},
		PossibleItems:       []agent.WebResultItem{},
		DiscoveredRelatives: []string{},
		QueriesUsed:         []string{},
	}
	var failures []Failure
	seen := map[string]bool{}
	seenRel := map[string]bool{}
	any := false

	for _, out := range outcomes {
		if !out.Task.Kind.IsWebSearch() {
			continue
		}
		if out.Status == dispatch.StatusError || out.Status == dispatch.StatusFailed {
			failures = append(failures, Failure{Query: out.Task.Target, Err: out.Err})
			continue
		}
		if out.Result == nil || out.Result.Web == nil {
			continue
		}
		any = true
		data := out.Result.Web

		merged.QueriesUsed = append(merged.QueriesUsed, queriesFor(out, data)...)
		merged.ConfirmedItems = foldItems(merged.ConfirmedItems, data.ConfirmedItems, out.Task.Target, seen)
		merged.PossibleItems = foldItems(merged.PossibleItems, data.PossibleItems, out.Task.Target, seen)

		for _, rel := range data.DiscoveredRelatives {
			key := strings.ToLower(rel)
			if !seenRel[key] {
				seenRel[key] = true
				merged.DiscoveredRelatives = append(merged.DiscoveredRelatives, rel)
			}
		}
	}

	if !any {
		return nil, failures
	}
	sortByConfidence(merged.ConfirmedItems)
	sortByConfidence(merged.PossibleItems)
	return merged, failures
}

// foldItems appends the unseen items, tagging each with its originating
// query when the transport left it blank.
func foldItems(dst, src []agent.WebResultItem, query string, seen map[string]bool) []agent.WebResultItem {
	for _, item := range src {
		key := item.DedupKey()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if item.Query == "" {
			item.Query = query
		}
		dst = append(dst, item)
	}
	return dst
}

func queriesFor(out dispatch.Outcome, data *agent.WebData) []string {
	if len(data.QueriesUsed) > 0 {
		return data.QueriesUsed
	}
	return []string{out.Task.Target}
}

func sortByConfidence(items []agent.WebResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ConfidenceScore > items[j].ConfidenceScore
	})
}
