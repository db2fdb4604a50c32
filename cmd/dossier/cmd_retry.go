package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dossier/internal/display"
)

var retryFlags fragmentFlags

var retryCmd = &cobra.Command{
	Use:   "retry <investigation-id> <agent-type>",
	Short: "Re-run one agent for an existing investigation",
	Long: "Rebuilds the agent's task from the given fragments and re-runs it.\n" +
		"On success the agent's previous finding is overwritten in place.",
	Example: `  dossier retry 1f7c9a2e-... BreachCheck --email jdoe@example.com`,
	Args:    cobra.ExactArgs(2),
	RunE:    runRetry,
}

func init() {
	retryFlags.bind(retryCmd.Flags())
}

func runRetry(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	orch, err := buildOrchestrator(cfg, st)
	if err != nil {
		return err
	}
	res, err := orch.Retry(cmd.Context(), args[0], args[1], retryFlags.params())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s retry: %s\n", display.AgentType(args[1]), display.TaskStatus(res.Status))
	if res.FindingID != 0 {
		fmt.Fprintf(out, "Finding %d updated.\n", res.FindingID)
	}
	return nil
}
