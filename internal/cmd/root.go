// Package cmd provides the scoutctl CLI: trigger a run, run an admin
// investigation, dump a run's event log, and replay a run from wherever it
// left off (spec section 6.7).
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string
var regionDir string

var rootCmd = &cobra.Command{
	Use:   "scoutctl",
	Short: "Operate the Scout Engine civic-signal pipeline",
	Long: `scoutctl triggers and inspects Scout Engine runs: start a run over a
configured region, run a bounded admin investigation query against the
graph, dump a run's event log, or replay a run from wherever it left off.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "scoutctl.yaml", "path to the engine config file")
	rootCmd.PersistentFlags().StringVar(&regionDir, "region-dir", "./regions", "directory of region profile YAML files")
}

// Execute runs the root command and returns a process exit code matching
// spec section 6.7: 0 success, 1 unrecoverable failure, 2 invalid
// configuration, 3 budget exceeded.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	if code, ok := IsSilentExit(err); ok {
		return code
	}
	return exitUnrecoverable
}
