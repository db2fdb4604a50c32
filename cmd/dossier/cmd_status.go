package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"dossier/internal/display"
	"dossier/internal/store"
)

var statusFlags struct {
	id string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List investigations, or show one investigation's findings",
	Example: `  dossier status
  dossier status --id 1f7c9a2e-...`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFlags.id, "id", "", "Investigation ID to show in detail")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if statusFlags.id != "" {
		return showInvestigation(cmd, st, statusFlags.id)
	}
	return listInvestigations(cmd, st)
}

func listInvestigations(cmd *cobra.Command, st store.Store) error {
	list, err := st.ListInvestigations()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No investigations yet. Start one with: dossier investigate")
		return nil
	}
	for _, inv := range list {
		fmt.Fprintf(out, "%s  %-8s  %-19s  %s\n",
			inv.ID, display.InvestigationStatus(inv.Status), inv.CreatedAt, inv.Target)
	}
	return nil
}

func showInvestigation(cmd *cobra.Command, st store.Store, id string) error {
	inv, err := st.GetInvestigation(id)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("investigation %s not found", id)
	}
	findings, err := st.ListFindingsByInvestigation(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Investigation %s\n", inv.ID)
	fmt.Fprintf(out, "  Target:  %s\n", inv.Target)
	fmt.Fprintf(out, "  Status:  %s\n", display.InvestigationStatus(inv.Status))
	fmt.Fprintf(out, "  Created: %s\n\n", inv.CreatedAt)

	if len(findings) == 0 {
		fmt.Fprintln(out, "No findings recorded.")
		return nil
	}
	for _, f := range findings {
		score := "-"
		if f.ConfidenceScore != nil {
			score = fmt.Sprintf("%d", *f.ConfidenceScore)
		}
		fmt.Fprintf(out, "  [%d] %-20s score=%-4s %-12s %s\n",
			f.ID, display.AgentType(f.AgentType), score,
			display.VerificationStatus(f.VerificationStatus), f.Source)
	}

	// The System record carries per-task diagnostics; surface failures.
	if diag, err := st.GetFindingByAgent(id, "System"); err == nil && diag != nil {
		var d store.Diagnostics
		if err := json.Unmarshal([]byte(diag.Data), &d); err == nil && len(d.FailedAgents) > 0 {
			fmt.Fprintf(out, "\nFailed agents: %s\n", display.AgentList(d.FailedAgents))
			fmt.Fprintf(out, "Re-run with: dossier retry %s <agent-type> [fragment flags]\n", id)
		}
	}
	return nil
}
