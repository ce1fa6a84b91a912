package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/frontkit/internal/config"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/conneroisu/frontkit/internal/pipeline"
	"github.com/conneroisu/frontkit/internal/task"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// configErr holds a failure to read an explicitly named config file.
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "frontkit",
	Short: "Build tooling for design-system frontends",
	Long: `frontkit compiles a design system's sources into its distributions:
an npm package, versioned release assets and a review app.

Pipelines are composed from small tasks run in series or in parallel.
Parallel tasks that would write where a sibling reads or writes are
rejected before anything runs.

Quick Start:
  frontkit list                   List the runnable entries
  frontkit run build:package      Build the npm package
  frontkit build dist             Build release assets
  frontkit watch                  Rebuild the review app on change`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, stopping running pipelines and watchers.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .frontkit.yml, can also use FRONTKIT_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("root", ".", "project root directory")
	flags.StringP("target", "t", "package", "distribution target for standalone entries (package, dist, app)")

	bindFlags(flags, rootBindings)
}

// rootBindings maps configuration keys to persistent flags.
var rootBindings = map[string]string{
	"log.level":  "log-level",
	"log.format": "log-format",
	"root":       "root",
	"target":     "target",
}

// initConfig selects the configuration file. Priority, highest first:
// --config, FRONTKIT_CONFIG_FILE, then .frontkit.yml in the working
// directory. A missing default file is not an error.
func initConfig() {
	configErr = nil
	explicit := true

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".frontkit")
	}

	config.BindEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			configErr = err
		}
	}
}

// session is the state every pipeline command shares.
type session struct {
	config  *config.Config
	logger  logging.Logger
	runner  *task.Runner
	builder *pipeline.Builder
}

func newSession(cmd *cobra.Command, opts ...pipeline.Option) (*session, error) {
	if configErr != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", configErr)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return nil, err
	}
	lc.Output = cmd.ErrOrStderr()
	logger := logging.NewLogger(lc)
	logger.Debug(cmd.Context(), "Loaded configuration", "config_file", viper.ConfigFileUsed(), "root", cfg.Root)

	builder, err := pipeline.New(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}

	return &session{config: cfg, logger: logger, runner: task.NewRunner(logger), builder: builder}, nil
}
