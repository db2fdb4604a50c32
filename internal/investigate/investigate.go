// Package investigate is the orchestrator: it validates the fragment set,
// selects and dispatches lookup tasks, merges web results, scores non-web
// findings, and persists one finding per agent plus an aggregate System
// diagnostic record.
package investigate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dossier/internal/agent"
	"dossier/internal/dispatch"
	"dossier/internal/identity"
	"dossier/internal/logging"
	"dossier/internal/merge"
	"dossier/internal/queries"
	"dossier/internal/score"
	"dossier/internal/selector"
	"dossier/internal/store"
)

// Event is one entry in the structured run log returned to the caller.
// Events mirror what gets logged, in order, so API and MCP clients can show
// progress without scraping console output.
type Event struct {
	Time   string `json:"time"`
	Stage  string `json:"stage"` // select | dispatch | merge | persist | complete
	Agent  string `json:"agent,omitempty"`
	Status string `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Report is what an investigation run returns.
type Report struct {
	InvestigationID string   `json:"investigationId"`
	SearchesRun     int      `json:"searchesRun"`
	SearchTypes     []string `json:"searchTypes"`
	FailedAgents    []string `json:"failedAgents,omitempty"`
	Events          []Event  `json:"events"`
}

// Orchestrator wires the selector, dispatcher, merge engine, scorer, and
// store together. Safe for concurrent Run calls.
type Orchestrator struct {
	store      store.Store
	registry   *agent.Registry
	dispatcher *dispatch.Dispatcher
	topQueries int
	log        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithParallelism bounds concurrent task execution.
func WithParallelism(n int) Option {
	return func(o *Orchestrator) {
		o.dispatcher = dispatch.New(o.registry, dispatch.WithParallelism(n))
	}
}

// WithDispatcher replaces the default dispatcher entirely.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(o *Orchestrator) { o.dispatcher = d }
}

// WithTopQueries sets how many generated query candidates are dispatched.
func WithTopQueries(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.topQueries = n
		}
	}
}

// New returns an Orchestrator over the given store and agent registry.
func New(st store.Store, registry *agent.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      st,
		registry:   registry,
		dispatcher: dispatch.New(registry),
		topQueries: queries.DefaultTopN,
		log:        logging.New("investigate"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one full investigation: select, dispatch, merge, score,
// persist, complete. Partial agent failures do not fail the run; they end up
// in the diagnostic record. Run fails only on invalid input or storage
// errors.
func (o *Orchestrator) Run(ctx context.Context, params identity.SearchParameters) (*Report, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	invID, err := o.store.CreateInvestigation(&store.Investigation{Target: displayTarget(params)})
	if err != nil {
		return nil, fmt.Errorf("create investigation: %w", err)
	}

	var events []Event
	record := func(stage, agentType, status, detail string) {
		events = append(events, Event{
			Time: time.Now().UTC().Format(time.RFC3339), Stage: stage,
			Agent: agentType, Status: status, Detail: detail,
		})
	}

	cands := queries.TopN(queries.Generate(params), o.topQueries)
	selected := selector.Select(params, cands)
	tasks := selector.Tasks(selected)
	for _, bt := range selected {
		record("select", "", "", fmt.Sprintf("%s builder: %d tasks", bt.Builder, len(bt.Tasks)))
	}
	o.log.Info("investigation started", "investigation", invID, "tasks", len(tasks))

	outcomes, err := o.dispatcher.Run(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	for _, out := range outcomes {
		record("dispatch", out.Task.Kind.String(), string(out.Status), out.Task.Target)
	}

	diags, failed, err := o.persist(invID, params, outcomes, record)
	if err != nil {
		return nil, err
	}
	if err := o.saveDiagnostics(invID, diags, failed); err != nil {
		return nil, err
	}

	if err := o.store.UpdateInvestigationStatus(invID, store.StatusComplete); err != nil {
		return nil, fmt.Errorf("complete investigation: %w", err)
	}
	record("complete", "", "", fmt.Sprintf("%d searches settled", len(outcomes)))
	o.log.Info("investigation complete", "investigation", invID, "searches", len(outcomes), "failed", len(failed))

	return &Report{
		InvestigationID: invID,
		SearchesRun:     len(outcomes),
		SearchTypes:     searchTypes(tasks),
		FailedAgents:    failed,
		Events:          events,
	}, nil
}

// persist writes the merged web finding and one scored finding per non-web
// agent kind, and returns the diagnostic entries plus the failed-agent list.
func (o *Orchestrator) persist(invID string, params identity.SearchParameters, outcomes []dispatch.Outcome, record func(stage, agentType, status, detail string)) ([]store.DiagnosticEntry, []string, error) {
	var diags []store.DiagnosticEntry
	var failed []string
	seenFailed := map[string]bool{}

	for _, out := range outcomes {
		entry := store.DiagnosticEntry{
			AgentType: out.Task.Kind.String(),
			Status:    string(out.Status),
			HasData:   out.Status == dispatch.StatusOK,
		}
		if out.Err != nil {
			entry.Error = out.Err.Error()
		}
		diags = append(diags, entry)
		if (out.Status == dispatch.StatusError || out.Status == dispatch.StatusFailed) && !seenFailed[entry.AgentType] {
			seenFailed[entry.AgentType] = true
			failed = append(failed, entry.AgentType)
		}
	}

	// Web-search class: one merged finding, or a placeholder when every web
	// query died.
	merged, failures := merge.Web(outcomes)
	if merged != nil || len(failures) > 0 {
		f, err := webFinding(invID, params, merged, failures)
		if err != nil {
			return nil, nil, err
		}
		if _, err := o.store.SaveFinding(f); err != nil {
			return nil, nil, fmt.Errorf("save web finding: %w", err)
		}
		record("persist", f.AgentType, "", "merged web finding")
	}

	// Non-web kinds: group successful outcomes by kind, one finding each.
	grouped := map[agent.Kind][]dispatch.Outcome{}
	var order []agent.Kind
	for _, out := range outcomes {
		if out.Task.Kind.IsWebSearch() || out.Status != dispatch.StatusOK {
			continue
		}
		if _, ok := grouped[out.Task.Kind]; !ok {
			order = append(order, out.Task.Kind)
		}
		grouped[out.Task.Kind] = append(grouped[out.Task.Kind], out)
	}
	for _, kind := range order {
		f, err := agentFinding(invID, params, kind, grouped[kind])
		if err != nil {
			return nil, nil, err
		}
		if _, err := o.store.SaveFinding(f); err != nil {
			return nil, nil, fmt.Errorf("save %s finding: %w", kind, err)
		}
		record("persist", kind.String(), "", fmt.Sprintf("confidence %d", *f.ConfidenceScore))
	}

	return diags, failed, nil
}

func (o *Orchestrator) saveDiagnostics(invID string, diags []store.DiagnosticEntry, failed []string) error {
	payload, err := json.Marshal(store.Diagnostics{Entries: diags, FailedAgents: failed})
	if err != nil {
		return fmt.Errorf("marshal diagnostics: %w", err)
	}
	if err := agent.ValidatePayload(agent.KindSystem, payload); err != nil {
		return err
	}
	_, err = o.store.SaveFinding(&store.Finding{
		InvestigationID: invID,
		AgentType:       agent.KindSystem.String(),
		Source:          "orchestrator",
		Data:            string(payload),
	})
	if err != nil {
		return fmt.Errorf("save diagnostics: %w", err)
	}
	return nil
}

// webFinding builds the single merged web-search finding. Findings of this
// class never carry a confidence score; when no query produced data the
// record is an empty placeholder carrying each failed query and its error.
func webFinding(invID string, params identity.SearchParameters, merged *agent.WebData, failures []merge.Failure) (*store.Finding, error) {
	if merged == nil {
		merged = &agent.WebData{
			ConfirmedItems:      []agent.WebResultItem{},
			PossibleItems:       []agent.WebResultItem{},
			DiscoveredRelatives: []string{},
			QueriesUsed:         []string{},
		}
	}
	doc := map[string]any{
		"confirmedItems":      merged.ConfirmedItems,
		"possibleItems":       merged.PossibleItems,
		"discoveredRelatives": merged.DiscoveredRelatives,
		"queriesUsed":         merged.QueriesUsed,
		"searchContext":       searchContext(params),
	}
	if len(failures) > 0 {
		failedSearches := make([]map[string]string, 0, len(failures))
		for _, f := range failures {
			entry := map[string]string{"query": f.Query}
			if f.Err != nil {
				entry["error"] = f.Err.Error()
			}
			failedSearches = append(failedSearches, entry)
		}
		doc["failedSearches"] = failedSearches
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal web finding: %w", err)
	}
	if err := agent.ValidatePayload(agent.KindWebSearch, raw); err != nil {
		return nil, err
	}
	return &store.Finding{
		InvestigationID: invID,
		AgentType:       agent.KindWebSearch.String(),
		Source:          "web",
		Data:            string(raw),
	}, nil
}

// agentFinding folds the successful outcomes of one non-web kind into a
// single scored finding. The score is computed from the agent payload alone;
// the search context is attached afterwards so it never inflates its own
// keyword bonus.
func agentFinding(invID string, params identity.SearchParameters, kind agent.Kind, outs []dispatch.Outcome) (*store.Finding, error) {
	payload := map[string]any{}
	source := ""
	if len(outs) == 1 {
		payload = outs[0].Result.Data
		source = resultSource(outs[0])
	} else {
		var results []map[string]any
		var sources []string
		for _, out := range outs {
			results = append(results, map[string]any{
				"source": resultSource(out),
				"data":   out.Result.Data,
			})
			sources = append(sources, resultSource(out))
		}
		payload = map[string]any{"results": results}
		source = strings.Join(sources, ", ")
	}

	conf := score.Confidence(params, payload)

	doc := map[string]any{}
	for k, v := range payload {
		doc[k] = v
	}
	doc["searchContext"] = searchContext(params)
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal %s finding: %w", kind, err)
	}
	if err := agent.ValidatePayload(kind, raw); err != nil {
		return nil, err
	}
	return &store.Finding{
		InvestigationID: invID,
		AgentType:       kind.String(),
		Source:          source,
		Data:            string(raw),
		ConfidenceScore: &conf,
	}, nil
}

func resultSource(out dispatch.Outcome) string {
	if out.Result != nil && out.Result.Source != "" {
		return out.Result.Source
	}
	return out.Task.Source
}

// searchContext is the fragment echo attached to every finding so reviewers
// can see what drove the lookup.
func searchContext(params identity.SearchParameters) map[string]any {
	ctx := map[string]any{}
	if params.FullName != "" {
		ctx["fullName"] = params.FullName
	}
	if params.Email != "" {
		ctx["email"] = params.Email
	}
	if params.Phone != "" {
		ctx["phone"] = params.Phone
	}
	if params.Username != "" {
		ctx["username"] = params.Username
	}
	if params.Address != "" {
		ctx["address"] = params.Address
	}
	if len(params.KeywordList()) > 0 {
		ctx["keywords"] = params.KeywordList()
	}
	if len(params.RelativeList()) > 0 {
		ctx["knownRelatives"] = params.RelativeList()
	}
	return ctx
}

// displayTarget picks the most descriptive fragment as the investigation's
// target label.
func displayTarget(params identity.SearchParameters) string {
	for _, s := range []string{params.FullName, params.Email, params.Username, params.Phone, params.Address, params.Keywords} {
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	}
	return strings.TrimSpace(params.KnownRelatives)
}

// searchTypes lists the distinct agent type names in dispatch order.
func searchTypes(tasks []agent.Task) []string {
	var out []string
	seen := map[string]bool{}
	for _, task := range tasks {
		name := task.Kind.String()
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
