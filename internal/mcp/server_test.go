package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dossier/internal/agent"
	"dossier/internal/investigate"
	mcpserver "dossier/internal/mcp"
	"dossier/internal/store"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestServer(t *testing.T) (*mcpserver.Server, store.Store) {
	t.Helper()
	st := store.NewMemStore()

	webData := &agent.WebData{
		ConfirmedItems: []agent.WebResultItem{
			{Title: "Profile", Link: "https://example.com/jdoe", ConfidenceScore: 60},
		},
		PossibleItems:       []agent.WebResultItem{},
		DiscoveredRelatives: []string{},
	}
	reg := agent.NewRegistry()
	reg.Register(agent.KindEmailIntel, agent.NewStubInvoker().
		Fallback(&agent.Result{Data: map[string]any{"registered": []any{"github"}}}))
	reg.Register(agent.KindBreachCheck, agent.NewStubInvoker().
		Fail("jdoe@example.com", errors.New("upstream 503")))
	reg.Register(agent.KindEmailEnum, agent.NewStubInvoker().
		Fallback(&agent.Result{Data: map[string]any{"accounts": 2}}))
	reg.Register(agent.KindWebSearch, agent.NewStubInvoker().
		Fallback(&agent.Result{Web: webData}))
	reg.Register(agent.KindUsernameScan, agent.NewStubInvoker().
		Fallback(&agent.Result{Data: map[string]any{"hits": []any{"github.com/jdoe"}}}))
	reg.Register(agent.KindSocialProfiles, agent.NewStubInvoker().
		Fallback(&agent.Result{Data: map[string]any{"profiles": []any{"mastodon"}}}))

	return mcpserver.NewServer(investigate.New(st, reg), st), st
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"start_investigation": false,
		"get_findings":        false,
		"get_diagnostics":     false,
		"retry_agent":         false,
		"set_verification":    false,
		"list_investigations": false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_InvestigationFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	started := callTool(t, ctx, session, "start_investigation", map[string]any{
		"email": "jdoe@example.com",
	})
	invID, _ := started["investigation_id"].(string)
	if invID == "" {
		t.Fatalf("start_investigation result = %v", started)
	}
	if n, _ := started["searches_run"].(float64); n < 6 {
		t.Fatalf("searches_run = %v", started["searches_run"])
	}

	findings := callTool(t, ctx, session, "get_findings", map[string]any{
		"investigation_id": invID,
	})
	if findings["status"] != "complete" {
		t.Fatalf("status = %v", findings["status"])
	}
	list, _ := findings["findings"].([]any)
	if len(list) < 5 {
		t.Fatalf("findings = %d", len(list))
	}

	diags := callTool(t, ctx, session, "get_diagnostics", map[string]any{
		"investigation_id": invID,
	})
	failedAgents, _ := diags["failed_agents"].([]any)
	if len(failedAgents) != 1 || failedAgents[0] != "BreachCheck" {
		t.Fatalf("failed_agents = %v", diags["failed_agents"])
	}

	all := callTool(t, ctx, session, "list_investigations", map[string]any{})
	invs, _ := all["investigations"].([]any)
	if len(invs) != 1 {
		t.Fatalf("investigations = %v", all)
	}
}

func TestServer_SetVerification(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	started := callTool(t, ctx, session, "start_investigation", map[string]any{
		"email": "jdoe@example.com",
	})
	invID := started["investigation_id"].(string)

	f, err := st.GetFindingByAgent(invID, "EmailIntel")
	if err != nil || f == nil {
		t.Fatalf("finding: %v %v", f, err)
	}
	callTool(t, ctx, session, "set_verification", map[string]any{
		"finding_id": f.ID,
		"status":     "verified",
	})
	f, _ = st.GetFinding(f.ID)
	if f.VerificationStatus != store.VerificationVerified {
		t.Fatalf("verification = %q", f.VerificationStatus)
	}

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "set_verification",
		Arguments: map[string]any{"finding_id": f.ID, "status": "bogus"},
	})
	if err == nil && !res.IsError {
		t.Fatal("expected error for invalid verification status")
	}
}

func TestServer_RetryAgent(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	started := callTool(t, ctx, session, "start_investigation", map[string]any{
		"email": "jdoe@example.com",
	})
	invID := started["investigation_id"].(string)

	// EmailIntel succeeded originally; retrying it overwrites in place.
	out := callTool(t, ctx, session, "retry_agent", map[string]any{
		"investigation_id": invID,
		"agent_type":       "EmailIntel",
		"search_data":      map[string]any{"email": "jdoe@example.com"},
	})
	if out["status"] != "ok" {
		t.Fatalf("retry result = %v", out)
	}
	f, _ := st.GetFindingByAgent(invID, "EmailIntel")
	if f == nil {
		t.Fatal("finding missing after retry")
	}
}
