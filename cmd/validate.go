package cmd

import (
	"fmt"

	"github.com/conneroisu/frontkit/internal/pipeline"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [entry...]",
	Short: "Check the configuration and pipelines without running them",
	Long: `Load and validate the configuration, then assemble each entry's pipeline
and check it for conflicting parallel tasks. Nothing is compiled or
written.

Examples:
  frontkit validate                   # every entry
  frontkit validate build:dist        # one entry`,
	ValidArgsFunction: completeEntries,
	RunE:              runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	entries := pipeline.Entries()
	if len(args) > 0 {
		var err error
		if entries, err = pipeline.ParseEntries(args); err != nil {
			return err
		}
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, e := range entries {
		t, err := s.builder.Build(e)
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", e, err)
			continue
		}
		fmt.Fprintf(out, "✓ %s (%d tasks)\n", e, len(t.Leaves()))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d entries are invalid", failed, len(entries))
	}
	return nil
}
