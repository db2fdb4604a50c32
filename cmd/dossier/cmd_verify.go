package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dossier/internal/display"
)

var verifyCmd = &cobra.Command{
	Use:     "verify <finding-id> <status>",
	Short:   "Set a finding's verification status",
	Long:    "Status is one of: needs_review, verified, inaccurate.",
	Example: `  dossier verify 42 verified`,
	Args:    cobra.ExactArgs(2),
	RunE:    runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("finding id %q: %w", args[0], err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpdateVerificationStatus(id, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Finding %d marked %s.\n", id, display.VerificationStatus(args[1]))
	return nil
}
