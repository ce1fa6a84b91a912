package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/frontkit/internal/adapters/components"
	"github.com/conneroisu/frontkit/internal/assets"
	"github.com/conneroisu/frontkit/internal/paths"
	"github.com/spf13/cobra"
)

var componentsCmd = &cobra.Command{
	Use:     "components [name...]",
	Aliases: []string{"c"},
	Short:   "List component definitions",
	Long: `Scan the sources for component definitions (components/<name>/<name>.yaml)
and list each component with its macro name, parameters and examples.
Definitions are validated as they are read, so this also reports broken
definitions without building anything.

Examples:
  frontkit components
  frontkit components button -f json
  frontkit components --params`,
	RunE: runComponents,
}

var (
	componentsFlags  *OutputFlags
	componentsParams bool
)

func init() {
	rootCmd.AddCommand(componentsCmd)

	componentsFlags = AddOutputFlags(componentsCmd)
	componentsCmd.Flags().BoolVarP(&componentsParams, "params", "p", false, "Include parameter names")
}

type componentInfo struct {
	Name      string   `json:"name" yaml:"name"`
	MacroName string   `json:"macro_name" yaml:"macro_name"`
	Path      string   `json:"path" yaml:"path"`
	Examples  int      `json:"examples" yaml:"examples"`
	Params    []string `json:"params,omitempty" yaml:"params,omitempty"`
}

func runComponents(cmd *cobra.Command, args []string) error {
	if err := componentsFlags.Validate(); err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	resolver := s.builder.Resolver()
	ns, _, _ := resolver.Namespace()
	src := resolver.Join(paths.RoleSrc, ns)
	opts, err := resolver.Options(src, resolver.Output())
	if err != nil {
		return err
	}

	registry, err := components.New(s.logger, s.config.Layout.Namespace).
		Scan(cmd.Context(), components.DefaultPattern, assets.FromTask(opts))
	if err != nil {
		return err
	}

	selected := registry.All()
	if len(args) > 0 {
		selected = selected[:0]
		for _, name := range args {
			c, ok := registry.Get(name)
			if !ok {
				return fmt.Errorf("component %q not found in %s", name, src)
			}
			selected = append(selected, c)
		}
	}

	infos := make([]componentInfo, 0, len(selected))
	for _, c := range selected {
		info := componentInfo{
			Name:      c.Name,
			MacroName: c.MacroName,
			Path:      c.Path,
			Examples:  len(c.Definition.Examples),
		}
		if componentsParams {
			for _, p := range c.Definition.Params {
				info.Params = append(info.Params, p.Name)
			}
		}
		infos = append(infos, info)
	}

	out := cmd.OutOrStdout()
	if strings.EqualFold(componentsFlags.Format, "table") {
		return componentsTable(out, infos)
	}
	return encode(out, componentsFlags.Format, infos)
}

func componentsTable(out io.Writer, infos []componentInfo) error {
	if len(infos) == 0 {
		fmt.Fprintln(out, "No components found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "NAME\tMACRO\tEXAMPLES"
	if componentsParams {
		header += "\tPARAMS"
	}
	fmt.Fprintln(w, header)
	for _, info := range infos {
		row := fmt.Sprintf("%s\t%s\t%d", info.Name, info.MacroName, info.Examples)
		if componentsParams {
			row += "\t" + strings.Join(info.Params, ", ")
		}
		fmt.Fprintln(w, row)
	}
	fmt.Fprintf(w, "\nTotal: %d components\n", len(infos))
	return w.Flush()
}
