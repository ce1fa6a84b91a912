package cmd

import (
	"github.com/conneroisu/frontkit/internal/pipeline"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Rebuild the review app's assets on change",
	Long: `Watch the sources and recompile the review app's styles, scripts and
fixtures when they change. Bursts of changes are coalesced into one run and
a failing compile is logged without stopping the watch. Stop with Ctrl+C.

Examples:
  frontkit watch
  frontkit watch --delay 250ms
  frontkit watch --build          # build the app once before watching`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchBuildFirst bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("delay", 0, "debounce delay before a batch of changes runs (default from config)")
	watchCmd.Flags().BoolVar(&watchBuildFirst, "build", false, "build the app before watching")
	// Unset flags fall back to the configured delay.
	bindFlags(watchCmd.Flags(), watchBindings)
}

var watchBindings = map[string]string{"watch.delay": "delay"}

func runWatch(cmd *cobra.Command, _ []string) error {
	entries := []pipeline.Entry{pipeline.WatchApp}
	if watchBuildFirst {
		entries = []pipeline.Entry{pipeline.BuildApp, pipeline.WatchApp}
	}
	return runEntries(cmd, entries)
}
