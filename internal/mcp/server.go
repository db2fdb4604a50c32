// Package mcp exposes the orchestrator over the Model Context Protocol so
// agent frontends can run investigations and review findings as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"dossier/internal/identity"
	"dossier/internal/investigate"
	"dossier/internal/logging"
	"dossier/internal/store"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around one orchestrator.
type Server struct {
	MCPServer *sdkmcp.Server

	orch *investigate.Orchestrator
	st   store.Store
}

// NewServer creates an MCP server exposing the investigation tools.
func NewServer(orch *investigate.Orchestrator, st store.Store) *Server {
	s := &Server{orch: orch, st: st}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "dossier", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over the given transport until ctx is canceled.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	return s.MCPServer.Run(ctx, transport)
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "start_investigation",
		Description: "Run a full investigation over a set of identity fragments. Returns the investigation ID, the searches run, and the structured event log.",
	}, s.handleStartInvestigation)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_findings",
		Description: "Get the persisted findings for an investigation, with decoded payloads and confidence scores.",
	}, s.handleGetFindings)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_diagnostics",
		Description: "Get the per-task diagnostic record for an investigation, including the failed-agents list that drives retries.",
	}, s.handleGetDiagnostics)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "retry_agent",
		Description: "Re-run exactly one agent for an existing investigation, overwriting its previous finding on success.",
	}, s.handleRetryAgent)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "set_verification",
		Description: "Set a finding's verification status: needs_review, verified, or inaccurate.",
	}, s.handleSetVerification)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_investigations",
		Description: "List all investigations with their target and completion status.",
	}, s.handleListInvestigations)
}

// --- Tool input/output types ---

type fragmentsInput struct {
	FullName       string `json:"full_name,omitempty" jsonschema:"full name of the subject"`
	Email          string `json:"email,omitempty" jsonschema:"email address"`
	Phone          string `json:"phone,omitempty" jsonschema:"phone number"`
	Username       string `json:"username,omitempty" jsonschema:"online handle"`
	Address        string `json:"address,omitempty" jsonschema:"street address"`
	Keywords       string `json:"keywords,omitempty" jsonschema:"comma-delimited keywords for matching"`
	KnownRelatives string `json:"known_relatives,omitempty" jsonschema:"comma-delimited known relatives"`
}

func (in fragmentsInput) params() identity.SearchParameters {
	return identity.SearchParameters{
		FullName:       in.FullName,
		Email:          in.Email,
		Phone:          in.Phone,
		Username:       in.Username,
		Address:        in.Address,
		Keywords:       in.Keywords,
		KnownRelatives: in.KnownRelatives,
	}
}

type startInvestigationOutput struct {
	InvestigationID string              `json:"investigation_id"`
	SearchesRun     int                 `json:"searches_run"`
	SearchTypes     []string            `json:"search_types"`
	FailedAgents    []string            `json:"failed_agents,omitempty"`
	Events          []investigate.Event `json:"events"`
}

type getFindingsInput struct {
	InvestigationID string `json:"investigation_id" jsonschema:"investigation ID from start_investigation"`
}

type findingOutput struct {
	ID                 int64          `json:"id"`
	AgentType          string         `json:"agent_type"`
	Source             string         `json:"source,omitempty"`
	Data               map[string]any `json:"data"`
	ConfidenceScore    *int           `json:"confidence_score"`
	VerificationStatus string         `json:"verification_status"`
	CreatedAt          string         `json:"created_at"`
}

type getFindingsOutput struct {
	InvestigationID string          `json:"investigation_id"`
	Status          string          `json:"status"`
	Findings        []findingOutput `json:"findings"`
}

type getDiagnosticsInput struct {
	InvestigationID string `json:"investigation_id" jsonschema:"investigation ID from start_investigation"`
}

type getDiagnosticsOutput struct {
	Entries      []store.DiagnosticEntry `json:"entries"`
	FailedAgents []string                `json:"failed_agents"`
}

type retryAgentInput struct {
	InvestigationID string         `json:"investigation_id" jsonschema:"investigation ID from start_investigation"`
	AgentType       string         `json:"agent_type" jsonschema:"agent type key from the diagnostics failed-agents list"`
	SearchData      fragmentsInput `json:"search_data" jsonschema:"the identity fragments to rebuild the agent's task from"`
}

type retryAgentOutput struct {
	Status    string `json:"status"`
	FindingID int64  `json:"finding_id,omitempty"`
}

type setVerificationInput struct {
	FindingID int64  `json:"finding_id" jsonschema:"finding ID from get_findings"`
	Status    string `json:"status" jsonschema:"needs_review, verified, or inaccurate"`
}

type setVerificationOutput struct {
	OK string `json:"ok"`
}

type listInvestigationsInput struct{}

type investigationOutput struct {
	ID        string `json:"id"`
	Target    string `json:"target"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type listInvestigationsOutput struct {
	Investigations []investigationOutput `json:"investigations"`
}

// --- Tool handlers ---

func (s *Server) handleStartInvestigation(ctx context.Context, _ *sdkmcp.CallToolRequest, input fragmentsInput) (*sdkmcp.CallToolResult, startInvestigationOutput, error) {
	logger := logging.New("mcp")
	report, err := s.orch.Run(ctx, input.params())
	if err != nil {
		return nil, startInvestigationOutput{}, fmt.Errorf("start_investigation: %w", err)
	}
	logger.Info("investigation run via mcp", "investigation", report.InvestigationID, "searches", report.SearchesRun)
	return nil, startInvestigationOutput{
		InvestigationID: report.InvestigationID,
		SearchesRun:     report.SearchesRun,
		SearchTypes:     report.SearchTypes,
		FailedAgents:    report.FailedAgents,
		Events:          report.Events,
	}, nil
}

func (s *Server) handleGetFindings(ctx context.Context, _ *sdkmcp.CallToolRequest, input getFindingsInput) (*sdkmcp.CallToolResult, getFindingsOutput, error) {
	inv, err := s.st.GetInvestigation(input.InvestigationID)
	if err != nil {
		return nil, getFindingsOutput{}, err
	}
	if inv == nil {
		return nil, getFindingsOutput{}, fmt.Errorf("investigation %s not found", input.InvestigationID)
	}
	findings, err := s.st.ListFindingsByInvestigation(input.InvestigationID)
	if err != nil {
		return nil, getFindingsOutput{}, err
	}

	out := getFindingsOutput{
		InvestigationID: inv.ID,
		Status:          inv.Status,
		Findings:        []findingOutput{},
	}
	for _, f := range findings {
		var data map[string]any
		if err := json.Unmarshal([]byte(f.Data), &data); err != nil {
			return nil, getFindingsOutput{}, fmt.Errorf("decode %s finding: %w", f.AgentType, err)
		}
		out.Findings = append(out.Findings, findingOutput{
			ID:                 f.ID,
			AgentType:          f.AgentType,
			Source:             f.Source,
			Data:               data,
			ConfidenceScore:    f.ConfidenceScore,
			VerificationStatus: f.VerificationStatus,
			CreatedAt:          f.CreatedAt,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetDiagnostics(ctx context.Context, _ *sdkmcp.CallToolRequest, input getDiagnosticsInput) (*sdkmcp.CallToolResult, getDiagnosticsOutput, error) {
	diags, err := s.orch.Diagnostics(input.InvestigationID)
	if err != nil {
		return nil, getDiagnosticsOutput{}, err
	}
	if diags == nil {
		return nil, getDiagnosticsOutput{}, fmt.Errorf("no diagnostics for investigation %s", input.InvestigationID)
	}
	out := getDiagnosticsOutput{Entries: diags.Entries, FailedAgents: diags.FailedAgents}
	if out.FailedAgents == nil {
		out.FailedAgents = []string{}
	}
	return nil, out, nil
}

func (s *Server) handleRetryAgent(ctx context.Context, _ *sdkmcp.CallToolRequest, input retryAgentInput) (*sdkmcp.CallToolResult, retryAgentOutput, error) {
	res, err := s.orch.Retry(ctx, input.InvestigationID, input.AgentType, input.SearchData.params())
	if err != nil {
		return nil, retryAgentOutput{}, fmt.Errorf("retry_agent: %w", err)
	}
	return nil, retryAgentOutput{Status: res.Status, FindingID: res.FindingID}, nil
}

func (s *Server) handleSetVerification(ctx context.Context, _ *sdkmcp.CallToolRequest, input setVerificationInput) (*sdkmcp.CallToolResult, setVerificationOutput, error) {
	if err := s.st.UpdateVerificationStatus(input.FindingID, input.Status); err != nil {
		return nil, setVerificationOutput{}, err
	}
	return nil, setVerificationOutput{OK: "verification status updated"}, nil
}

func (s *Server) handleListInvestigations(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listInvestigationsInput) (*sdkmcp.CallToolResult, listInvestigationsOutput, error) {
	list, err := s.st.ListInvestigations()
	if err != nil {
		return nil, listInvestigationsOutput{}, err
	}
	out := listInvestigationsOutput{Investigations: []investigationOutput{}}
	for _, inv := range list {
		out.Investigations = append(out.Investigations, investigationOutput{
			ID: inv.ID, Target: inv.Target, Status: inv.Status, CreatedAt: inv.CreatedAt,
		})
	}
	return nil, out, nil
}
