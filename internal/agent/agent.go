package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dossier/internal/identity"
)

// Task is one immutable unit of work bound to one agent invocation.
// Builders construct tasks; the dispatcher never mutates them.
type Task struct {
	Kind     Kind
	Target   string  // the query string handed to the agent
	Priority float64 // informational ranking from the builder; dispatch does not reorder on it
	Source   string  // source label for the persisted finding (e.g. registry domain)

	// Context optionally carries the full fragment set for agents that use
	// corroborating fragments (web-search class, people search).
	Context *identity.SearchParameters
}

// Result is the uniform success envelope. Exactly one of Data or Web is set:
// web-search-class agents return Web, everything else returns Data.
type Result struct {
	Data   map[string]any `json:"data,omitempty"`
	Web    *WebData       `json:"web,omitempty"`
	Source string         `json:"source,omitempty"` // overrides Task.Source when set
}

// Empty reports whether the agent succeeded but found nothing; recorded as
// no_data in diagnostics, not as an error.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	if r.Web != nil {
		return len(r.Web.ConfirmedItems) == 0 && len(r.Web.PossibleItems) == 0
	}
	return len(r.Data) == 0
}

// Invoker is the contract every lookup adapter implements. Invoke must be
// safe for concurrent use, must not share mutable state with siblings, and
// must honor ctx cancellation.
type Invoker interface {
	Invoke(ctx context.Context, task Task) (*Result, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, task Task) (*Result, error)

func (f InvokerFunc) Invoke(ctx context.Context, task Task) (*Result, error) {
	return f(ctx, task)
}

// ErrNoInvoker is returned when a task's kind has no registered invoker.
var ErrNoInvoker = errors.New("no invoker registered for agent kind")

// Registry routes kinds to invokers. Registration happens at wiring time,
// before dispatch; lookups during dispatch are read-only.
type Registry struct {
	invokers map[Kind]Invoker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{invokers: make(map[Kind]Invoker)}
}

// Register binds an invoker to a kind, replacing any previous binding.
func (r *Registry) Register(kind Kind, inv Invoker) {
	r.invokers[kind] = inv
}

// Lookup returns the invoker for a kind.
func (r *Registry) Lookup(kind Kind) (Invoker, error) {
	inv, ok := r.invokers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoInvoker, kind)
	}
	return inv, nil
}

// Kinds returns the registered kinds in stable order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.invokers))
	for k := range r.invokers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WebResultItem is one page hit from a web-search-class agent.
// Identity for dedup purposes is the normalized URL of Link.
type WebResultItem struct {
	Title           string  `json:"title"`
	Link            string  `json:"link"`
	Snippet         string  `json:"snippet"`
	DisplayLink     string  `json:"displayLink"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Query           string  `json:"query,omitempty"` // originating query, tagged at merge

	identity.Signals
}

// DedupKey returns the normalized-URL identity of the item.
func (it WebResultItem) DedupKey() string {
	return identity.NormalizeURL(it.Link)
}

// WebData is the fixed payload shape for the web-search class.
type WebData struct {
	ConfirmedItems      []WebResultItem `json:"confirmedItems"`
	PossibleItems       []WebResultItem `json:"possibleItems"`
	DiscoveredRelatives []string        `json:"discoveredRelatives"`
	QueriesUsed         []string        `json:"queriesUsed"`
}

// RawHit is an unscored page hit as extracted by a web-search transport.
type RawHit struct {
	Title   string
	Link    string
	Snippet string
}

// BuildWebData scores and buckets raw hits against the fragment set.
// An item is confirmed on an exact name match or on two and more
// corroborating signals; everything else is possible. Relatives discovered
// in snippets are collected for the merged finding.
func BuildWebData(hits []RawHit, query string, params identity.SearchParameters) *WebData {
	data := &WebData{
		ConfirmedItems:      []WebResultItem{},
		PossibleItems:       []WebResultItem{},
		DiscoveredRelatives: []string{},
		QueriesUsed:         []string{query},
	}
	seenRel := map[string]bool{}
	for _, h := range hits {
		text := h.Title + " " + h.Snippet
		sig := identity.MatchSignals(text, params)
		item := WebResultItem{
			Title:           h.Title,
			Link:            h.Link,
			Snippet:         h.Snippet,
			DisplayLink:     displayLink(h.Link),
			ConfidenceScore: scoreWebItem(sig),
			Signals:         sig,
		}
		if sig.IsExactMatch || sig.CorroborationCount() >= 2 {
			data.ConfirmedItems = append(data.ConfirmedItems, item)
		} else {
			data.PossibleItems = append(data.PossibleItems, item)
		}
		for _, rel := range identity.DiscoverRelatives(text, params.FullName) {
			key := strings.ToLower(rel)
			if !seenRel[key] {
				seenRel[key] = true
				data.DiscoveredRelatives = append(data.DiscoveredRelatives, rel)
			}
		}
	}
	return data
}

// scoreWebItem is the per-item web confidence heuristic: 20 base, 30 for an
// exact name match, 10 per other corroborating signal, 5 per keyword hit
// capped at 15, clamped to 100.
func scoreWebItem(sig identity.Signals) float64 {
	score := 20.0
	if sig.IsExactMatch {
		score += 30
	}
	for _, hit := range []bool{sig.HasLocation, sig.HasPhone, sig.HasEmail, sig.HasUsername, sig.HasKnownRelative} {
		if hit {
			score += 10
		}
	}
	kw := 5 * len(sig.KeywordMatches)
	if kw > 15 {
		kw = 15
	}
	score += float64(kw)
	if score > 100 {
		score = 100
	}
	return score
}

// displayLink reduces a link to its host for display, mirroring what search
// APIs return in their displayLink field.
func displayLink(link string) string {
	s := identity.NormalizeURL(link)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
