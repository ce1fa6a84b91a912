package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// OutputFlags are shared by commands that print structured listings.
type OutputFlags struct {
	Format string
}

var outputFormats = []string{"table", "json", "yaml"}

// AddOutputFlags adds --format to cmd.
func AddOutputFlags(cmd *cobra.Command) *OutputFlags {
	flags := &OutputFlags{}
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "table",
		fmt.Sprintf("Output format (%s)", strings.Join(outputFormats, "|")))
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	return flags
}

// Validate checks the format against the supported ones.
func (f *OutputFlags) Validate() error {
	return ValidateFormat(f.Format, outputFormats)
}

// ValidateFormat reports an unsupported format, listing the valid ones.
func ValidateFormat(format string, valid []string) error {
	for _, v := range valid {
		if strings.EqualFold(format, v) {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(valid, ", "))
}

// bindFlags binds viper keys to flags of set.
func bindFlags(set *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if flag := set.Lookup(name); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}
