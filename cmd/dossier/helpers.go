package main

import (
	"fmt"

	"dossier/internal/agent"
	"dossier/internal/config"
	"dossier/internal/dispatch"
	"dossier/internal/investigate"
	"dossier/internal/store"
)

// openStore opens the SQLite store at the configured path.
func openStore(c *config.Config) (store.Store, error) {
	st, err := store.Open(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// buildRegistry wires one invoker per configured agent type. Structured
// lookups come from the endpoints map; the web-search class uses the headless
// browser when enabled.
func buildRegistry(c *config.Config) (*agent.Registry, error) {
	reg := agent.NewRegistry()
	for name, ep := range c.Endpoints {
		kind, ok := agent.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("endpoints: unknown agent type %q", name)
		}
		reg.Register(kind, agent.NewHTTPInvoker(agent.Endpoint{
			BaseURL:    ep.BaseURL,
			Path:       ep.Path,
			QueryParam: ep.QueryParam,
			APIKey:     ep.APIKey,
		}))
	}
	if c.Browser.Enabled {
		b := agent.NewBrowserSearch(c.Browser.SearchURL)
		if c.Browser.MaxResults > 0 {
			b.MaxResults = c.Browser.MaxResults
		}
		b.Headless = c.Browser.Headless
		for _, kind := range agent.Kinds() {
			if kind.IsWebSearch() {
				reg.Register(kind, b)
			}
		}
	}
	return reg, nil
}

// buildOrchestrator assembles the orchestrator from config.
func buildOrchestrator(c *config.Config, st store.Store) (*investigate.Orchestrator, error) {
	reg, err := buildRegistry(c)
	if err != nil {
		return nil, err
	}
	d := dispatch.New(reg,
		dispatch.WithParallelism(c.Parallelism),
		dispatch.WithTaskTimeout(c.TaskTimeout.Std()),
	)
	return investigate.New(st, reg,
		investigate.WithDispatcher(d),
		investigate.WithTopQueries(c.TopQueries),
	), nil
}
