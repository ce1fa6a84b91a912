package cmd

import (
	"time"

	"github.com/conneroisu/frontkit/internal/pipeline"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <entry...>",
	Short: "Run pipelines by entry name",
	Long: `Run one or more pipelines in the order given. Each entry is assembled
and checked before anything runs: an unknown entry or a pipeline whose
parallel tasks conflict is rejected without touching the filesystem.

Examples:
  frontkit run build:package
  frontkit run clean:dist build:dist
  frontkit run styles --target app`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeEntries,
	RunE:              runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	entries, err := pipeline.ParseEntries(args)
	if err != nil {
		return err
	}
	return runEntries(cmd, entries)
}

func runEntries(cmd *cobra.Command, entries []pipeline.Entry) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	t, err := s.builder.BuildAll(entries)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	start := time.Now()
	err = s.runner.Run(ctx, t)

	snapshot := s.runner.Metrics().Snapshot()
	s.logger.Info(ctx, "Pipeline finished",
		"task", t.DisplayName(),
		"tasks", snapshot.Total,
		"failed", snapshot.Failed,
		"duration", time.Since(start).String(),
	)
	return err
}

func completeEntries(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	entries := pipeline.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.String() + "\t" + e.Description()
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
