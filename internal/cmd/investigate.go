package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var investigateCmd = &cobra.Command{
	Use:   "investigate <cypher-shaped query>",
	Short: "Run a bounded, read-only admin investigation query against the graph",
	Long: `Runs a Cypher-shaped MATCH query through the lint gates' permission
set (allowed labels, allowed relationships, max hop depth) before executing
it, per spec section 4.10. Write clauses and anything outside the
permission set are rejected before the store ever sees the query.

Example:
  scoutctl investigate "MATCH (t:Tension) RETURN t"`,
	Args: cobra.ExactArgs(1),
	RunE: runInvestigate,
}

func init() {
	rootCmd.AddCommand(investigateCmd)
}

func runInvestigate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, cleanup, err := buildApp(ctx)
	if err != nil {
		return configOrUnrecoverable(err)
	}
	defer cleanup()

	rows, err := a.investigator.Investigate(ctx, args[0], nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scoutctl:", err)
		return NewSilentExit(exitUnrecoverable)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			fmt.Fprintln(os.Stderr, "scoutctl:", err)
			return NewSilentExit(exitUnrecoverable)
		}
	}
	return nil
}
