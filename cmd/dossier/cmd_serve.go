package main

import (
	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"dossier/internal/logging"
	mcpserver "dossier/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the investigation tools over MCP on stdio",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	orch, err := buildOrchestrator(cfg, st)
	if err != nil {
		return err
	}
	srv := mcpserver.NewServer(orch, st)

	logger := logging.New("serve")
	logger.Info("mcp server starting", "db", cfg.DBPath)
	return srv.Run(cmd.Context(), &sdkmcp.StdioTransport{})
}
