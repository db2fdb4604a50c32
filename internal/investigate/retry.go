package investigate

import (
	"context"
	"encoding/json"
	"fmt"

	"dossier/internal/agent"
	"dossier/internal/dispatch"
	"dossier/internal/identity"
	"dossier/internal/merge"
	"dossier/internal/queries"
	"dossier/internal/selector"
	"dossier/internal/store"
)

// RetryResult reports a single-agent retry.
type RetryResult struct {
	InvestigationID string  `json:"investigationId"`
	AgentType       string  `json:"agentType"`
	Status          string  `json:"status"`
	FindingID       int64   `json:"findingId,omitempty"`
	Events          []Event `json:"events"`
}

// Retry re-runs exactly one agent's task-building, dispatch, and persistence
// path for an existing investigation. An existing finding for the agent is
// overwritten. The stored diagnostic record is left as-is; reconciling the
// failed-agents list is the caller's job.
func (o *Orchestrator) Retry(ctx context.Context, investigationID, agentType string, params identity.SearchParameters) (*RetryResult, error) {
	kind, ok := agent.ParseKind(agentType)
	if !ok {
		return nil, fmt.Errorf("unknown agent type %q", agentType)
	}
	if kind == agent.KindSystem {
		return nil, fmt.Errorf("agent type %q is not retryable", agentType)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	inv, err := o.store.GetInvestigation(investigationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("investigation %s not found", investigationID)
	}

	// Rebuild the full task list and keep only this agent's tasks.
	cands := queries.TopN(queries.Generate(params), o.topQueries)
	var tasks []agent.Task
	for _, task := range selector.Tasks(selector.Select(params, cands)) {
		if task.Kind == kind {
			tasks = append(tasks, task)
		}
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("fragments do not justify any %s task", agentType)
	}

	var events []Event
	outcomes, err := o.dispatcher.Run(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	for _, out := range outcomes {
		events = append(events, Event{Stage: "dispatch", Agent: agentType, Status: string(out.Status), Detail: out.Task.Target})
	}

	finding, status, err := o.retryFinding(investigationID, params, kind, outcomes)
	if err != nil {
		return nil, err
	}

	result := &RetryResult{
		InvestigationID: investigationID,
		AgentType:       agentType,
		Status:          status,
		Events:          events,
	}
	if finding == nil {
		o.log.Warn("retry produced no data", "investigation", investigationID, "agent", agentType, "status", status)
		return result, nil
	}

	// Overwrite the previous finding for this agent, if any.
	if prev, err := o.store.GetFindingByAgent(investigationID, kind.String()); err != nil {
		return nil, err
	} else if prev != nil {
		finding.ID = prev.ID
	}
	id, err := o.store.SaveFinding(finding)
	if err != nil {
		return nil, fmt.Errorf("save retried finding: %w", err)
	}
	result.FindingID = id
	o.log.Info("agent retried", "investigation", investigationID, "agent", agentType, "finding", id)
	return result, nil
}

// retryFinding converts the retry outcomes into a replacement finding. A
// retry that errors or finds nothing returns no finding and the settled
// status instead.
func (o *Orchestrator) retryFinding(invID string, params identity.SearchParameters, kind agent.Kind, outcomes []dispatch.Outcome) (*store.Finding, string, error) {
	if kind.IsWebSearch() {
		merged, failures := merge.Web(outcomes)
		if merged == nil {
			status := string(dispatch.StatusNoData)
			if len(failures) > 0 {
				status = string(dispatch.StatusError)
			}
			return nil, status, nil
		}
		f, err := webFinding(invID, params, merged, failures)
		return f, string(dispatch.StatusOK), err
	}

	var succeeded []dispatch.Outcome
	worst := string(dispatch.StatusNoData)
	for _, out := range outcomes {
		switch out.Status {
		case dispatch.StatusOK:
			succeeded = append(succeeded, out)
		case dispatch.StatusError, dispatch.StatusFailed:
			worst = string(out.Status)
		}
	}
	if len(succeeded) == 0 {
		return nil, worst, nil
	}
	f, err := agentFinding(invID, params, kind, succeeded)
	return f, string(dispatch.StatusOK), err
}

// UpdateVerification moves a finding's verification status; only the three
// known statuses are accepted.
func (o *Orchestrator) UpdateVerification(findingID int64, status string) error {
	return o.store.UpdateVerificationStatus(findingID, status)
}

// Findings returns the persisted findings for an investigation, with the
// Data column decoded for API consumers.
func (o *Orchestrator) Findings(investigationID string) ([]*store.Finding, error) {
	inv, err := o.store.GetInvestigation(investigationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("investigation %s not found", investigationID)
	}
	return o.store.ListFindingsByInvestigation(investigationID)
}

// Diagnostics returns the decoded System finding for an investigation, or
// nil when dispatch never completed.
func (o *Orchestrator) Diagnostics(investigationID string) (*store.Diagnostics, error) {
	f, err := o.store.GetFindingByAgent(investigationID, agent.KindSystem.String())
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	var d store.Diagnostics
	if err := json.Unmarshal([]byte(f.Data), &d); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}
	return &d, nil
}
