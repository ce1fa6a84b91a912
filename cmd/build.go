package cmd

import (
	"github.com/conneroisu/frontkit/internal/paths"
	"github.com/conneroisu/frontkit/internal/pipeline"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:       "build <package|dist|app>",
	Aliases:   []string{"b"},
	Short:     "Build a distribution target",
	ValidArgs: []string{"package", "dist", "app"},
	Args:      cobra.ExactArgs(1),
	Long: `Build one distribution target. Every build cleans its target first.

Examples:
  frontkit build package          # same as: frontkit run build:package
  frontkit build dist
  frontkit build app`,
	RunE: runBuild,
}

var buildEntries = map[paths.Target]pipeline.Entry{
	paths.TargetPackage: pipeline.BuildPackage,
	paths.TargetDist:    pipeline.BuildDist,
	paths.TargetApp:     pipeline.BuildApp,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	target, err := paths.ParseTarget(args[0])
	if err != nil {
		return err
	}
	return runEntries(cmd, []pipeline.Entry{buildEntries[target]})
}
