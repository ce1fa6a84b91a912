package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/frontkit/internal/pipeline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List the runnable entries",
	Long: `List every pipeline entry that run accepts, with its description and,
optionally, the tasks it is made of.

Examples:
  frontkit list                   # table
  frontkit list -f json
  frontkit list --tasks -f yaml   # include each entry's leaf tasks`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listFlags *OutputFlags
	listTasks bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddOutputFlags(listCmd)
	listCmd.Flags().BoolVar(&listTasks, "tasks", false, "Include each entry's leaf tasks (loads the configuration)")
}

type entryInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tasks       []string `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := listFlags.Validate(); err != nil {
		return err
	}

	var builder *pipeline.Builder
	if listTasks {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		builder = s.builder
	}

	entries := pipeline.Entries()
	infos := make([]entryInfo, 0, len(entries))
	for _, e := range entries {
		info := entryInfo{Name: e.String(), Description: e.Description()}
		if builder != nil {
			t, err := builder.Build(e)
			if err != nil {
				return fmt.Errorf("assembling %s: %w", e, err)
			}
			for _, leaf := range t.Leaves() {
				info.Tasks = append(info.Tasks, leaf.DisplayName())
			}
		}
		infos = append(infos, info)
	}

	out := cmd.OutOrStdout()
	if strings.EqualFold(listFlags.Format, "table") {
		return listTable(out, infos)
	}
	return encode(out, listFlags.Format, infos)
}

func listTable(out io.Writer, infos []entryInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := "ENTRY\tDESCRIPTION"
	if listTasks {
		header += "\tTASKS"
	}
	fmt.Fprintln(w, header)

	for _, info := range infos {
		row := info.Name + "\t" + info.Description
		if listTasks {
			row += "\t" + strings.Join(info.Tasks, ", ")
		}
		fmt.Fprintln(w, row)
	}
	return w.Flush()
}

// encode writes v as JSON or YAML.
func encode(out io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
