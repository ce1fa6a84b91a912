package cmd

import (
	"fmt"

	"github.com/conneroisu/frontkit/internal/paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect frontkit configuration",
	Long: `Inspect the configuration frontkit runs with.

Examples:
  frontkit config show                 # effective settings as YAML
  frontkit config show -f json
  frontkit config path                 # the config file in use, if any`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after defaults, the config file, environment
overrides and flags are applied, with name and version resolved from
package.json when unset.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configErr != nil {
			return fmt.Errorf("failed to read configuration: %w", configErr)
		}
		used := viper.ConfigFileUsed()
		if used == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No config file; using defaults and environment.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), used)
		return nil
	},
}

var configShowFormat string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd)

	configShowCmd.Flags().StringVarP(&configShowFormat, "format", "f", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ValidateFormat(configShowFormat, []string{"yaml", "json"}); err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	settings := viper.AllSettings()
	settings["root"] = s.builder.Resolver().Path(paths.RoleRoot)
	settings["target"] = s.builder.Resolver().Target().String()
	settings["name"] = s.config.Name
	settings["version"] = s.config.Version
	settings["watch"] = map[string]interface{}{"delay": s.config.Watch.Delay.String()}

	return encode(cmd.OutOrStdout(), configShowFormat, settings)
}
