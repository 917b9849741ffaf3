// Command scoutctl is the operational CLI for the Scout Engine: trigger a
// run, run an admin investigation query, dump a run's event log, or replay
// a run from wherever the log leaves off.
package main

import (
	"os"

	"github.com/fourthplaces/rootsignal-sub003/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
