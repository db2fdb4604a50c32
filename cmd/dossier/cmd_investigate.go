package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dossier/internal/display"
	"dossier/internal/identity"
)

type fragmentFlags struct {
	name      string
	email     string
	phone     string
	username  string
	address   string
	keywords  string
	relatives string
}

func (ff *fragmentFlags) bind(f *pflag.FlagSet) {
	f.StringVar(&ff.name, "name", "", "Full name of the subject")
	f.StringVar(&ff.email, "email", "", "Email address")
	f.StringVar(&ff.phone, "phone", "", "Phone number")
	f.StringVar(&ff.username, "username", "", "Online handle")
	f.StringVar(&ff.address, "address", "", "Street address")
	f.StringVar(&ff.keywords, "keywords", "", "Comma-delimited keywords for match scoring")
	f.StringVar(&ff.relatives, "relatives", "", "Comma-delimited known relatives")
}

func (ff *fragmentFlags) params() identity.SearchParameters {
	return identity.SearchParameters{
		FullName:       ff.name,
		Email:          ff.email,
		Phone:          ff.phone,
		Username:       ff.username,
		Address:        ff.address,
		Keywords:       ff.keywords,
		KnownRelatives: ff.relatives,
	}
}

var investigateFlags fragmentFlags

var investigateCmd = &cobra.Command{
	Use:   "investigate",
	Short: "Run a full investigation over a set of identity fragments",
	Example: `  dossier investigate --name "John Doe" --email jdoe@example.com
  dossier investigate --username jdoe --keywords "sailing,photography"`,
	RunE: runInvestigate,
}

func init() {
	investigateFlags.bind(investigateCmd.Flags())
}

func runInvestigate(cmd *cobra.Command, _ []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	orch, err := buildOrchestrator(cfg, st)
	if err != nil {
		return err
	}
	report, err := orch.Run(cmd.Context(), investigateFlags.params())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Investigation %s\n", report.InvestigationID)
	fmt.Fprintf(out, "  Searches run: %d (%s)\n", report.SearchesRun, display.AgentList(report.SearchTypes))
	if len(report.FailedAgents) > 0 {
		fmt.Fprintf(out, "  Failed:       %s\n", display.AgentList(report.FailedAgents))
		fmt.Fprintf(out, "\nRe-run failed agents with: dossier retry %s <agent-type>\n", report.InvestigationID)
	}
	fmt.Fprintf(out, "\nView findings with: dossier status --id %s\n", report.InvestigationID)
	return nil
}
