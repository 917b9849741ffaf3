package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/orchestration"
)

var runRegionSlug string
var runLat, runLng, runRadius float64
var runWait bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trigger a scout run over a configured region",
	Long: `Starts a new scout run, under a fresh run ID, via the
orchestration shell's Temporal workflow. --region must name a profile
already loaded from --region-dir; --lat/--lng/--radius override the
profile's configured center and radius for this run only.

By default the command returns as soon as the workflow is started. With
--wait it blocks until the run reaches a terminal state and exits 3
(budget exceeded) if the run was cancelled, matching section 6.7's exit
code contract.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runRegionSlug, "region", "", "region profile slug to run (required)")
	runCmd.Flags().Float64Var(&runLat, "lat", 0, "override region center latitude")
	runCmd.Flags().Float64Var(&runLng, "lng", 0, "override region center longitude")
	runCmd.Flags().Float64Var(&runRadius, "radius", 0, "override region radius (km)")
	runCmd.Flags().BoolVar(&runWait, "wait", false, "block until the run reaches a terminal state")
	_ = runCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, cleanup, err := buildApp(ctx)
	if err != nil {
		return configOrUnrecoverable(err)
	}
	defer cleanup()

	profile, ok := a.regions.BySlug(runRegionSlug)
	if !ok {
		fmt.Fprintf(os.Stderr, "scoutctl: no region profile named %q in %s\n", runRegionSlug, regionDir)
		return NewSilentExit(exitInvalidConfig)
	}
	ref := profile.RegionRef()
	if runLat != 0 {
		ref.Lat = runLat
	}
	if runLng != 0 {
		ref.Lng = runLng
	}
	if runRadius != 0 {
		ref.Radius = runRadius
	}

	if err := a.connectTemporal(); err != nil {
		fmt.Fprintln(os.Stderr, "scoutctl:", err)
		return NewSilentExit(exitUnrecoverable)
	}

	runID := uuid.New()
	wr, err := orchestration.StartRun(ctx, a.temporal, a.cfg.Temporal.TaskQueue, orchestration.RunInput{RunID: runID, Region: ref})
	if err != nil {
		fmt.Fprintln(os.Stderr, "scoutctl: start run:", err)
		return NewSilentExit(exitUnrecoverable)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "started run %s (workflow %s, run %s)\n", runID, wr.GetID(), wr.GetRunID())

	if !runWait {
		return nil
	}

	var result orchestration.RunResult
	if err := wr.Get(ctx, &result); err != nil {
		fmt.Fprintln(os.Stderr, "scoutctl: run:", err)
		return NewSilentExit(exitUnrecoverable)
	}
	if result.Cancelled {
		fmt.Fprintf(os.Stderr, "scoutctl: run %s cancelled: %s\n", runID, result.CancelReason)
		return NewSilentExit(exitBudgetExceeded)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s complete: %d signal(s) extracted, %d node(s) created, %d situation(s) formed\n",
		runID, result.Stats.SignalsExtracted, result.Stats.NodesCreated, result.Stats.SituationsFormed)
	return nil
}

// configOrUnrecoverable maps a buildApp error to the right exit code: an
// errInvalidConfig becomes exit 2, everything else (a dependent service
// being unreachable) becomes exit 1.
func configOrUnrecoverable(err error) error {
	fmt.Fprintln(os.Stderr, "scoutctl:", err)
	var cfgErr errInvalidConfig
	if errors.As(err, &cfgErr) {
		return NewSilentExit(exitInvalidConfig)
	}
	return NewSilentExit(exitUnrecoverable)
}
