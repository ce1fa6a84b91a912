// Package config loads frontkit settings with Viper from .frontkit.yml, the
// FRONTKIT_* environment and command-line flags.
//
// Settings cover the project layout, the build target, the stylesheet and
// script compilers, the clean ignore list and the watcher. The build target
// (FRONTKIT_TARGET) is read here once and handed to the path resolver.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/conneroisu/frontkit/internal/adapters/scripts"
	"github.com/conneroisu/frontkit/internal/adapters/styles"
	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/conneroisu/frontkit/internal/paths"
	"github.com/conneroisu/frontkit/internal/validation"
	"github.com/conneroisu/frontkit/internal/version"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	Root string `mapstructure:"root"`
	// Target selects the distribution root standalone entries build into.
	Target paths.Target `mapstructure:"target"`
	// Name and Version stamp release file names. Empty values are read
	// from package.json in Root.
	Name    string         `mapstructure:"name"`
	Version string         `mapstructure:"version"`
	Layout  paths.Layout   `mapstructure:"layout"`
	Styles  styles.Config  `mapstructure:"styles"`
	Scripts scripts.Config `mapstructure:"scripts"`
	Clean   CleanConfig    `mapstructure:"clean"`
	Watch   WatchConfig    `mapstructure:"watch"`
	Log     LogConfig      `mapstructure:"log"`
}

type CleanConfig struct {
	Ignore []string `mapstructure:"ignore"`
}

type WatchConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix prefixes environment overrides: FRONTKIT_<SECTION>_<KEY>.
const EnvPrefix = "FRONTKIT"

// BindEnv enables environment overrides for every registered key.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// SetDefaults registers every key with Viper so that environment
// overrides apply to all of them.
func SetDefaults() {
	layout := paths.DefaultLayout()
	sass := styles.DefaultConfig()
	js := scripts.DefaultConfig()

	viper.SetDefault("root", ".")
	viper.SetDefault("target", "package")
	viper.SetDefault("name", "")
	viper.SetDefault("version", "")

	viper.SetDefault("layout.src", layout.Src)
	viper.SetDefault("layout.dist", layout.Dist)
	viper.SetDefault("layout.package", layout.Package)
	viper.SetDefault("layout.app", layout.App)
	viper.SetDefault("layout.namespace", layout.Namespace)

	viper.SetDefault("styles.command", sass.Command)
	viper.SetDefault("styles.style", string(sass.Style))
	viper.SetDefault("styles.load_paths", sass.LoadPaths)
	viper.SetDefault("styles.quiet", sass.Quiet)

	viper.SetDefault("scripts.format", string(js.Format))
	viper.SetDefault("scripts.global_name", "GOVUKFrontend")
	viper.SetDefault("scripts.minify", js.Minify)
	viper.SetDefault("scripts.bundle", js.Bundle)
	viper.SetDefault("scripts.target", js.Target)
	viper.SetDefault("scripts.banner", "")
	viper.SetDefault("scripts.external", []string{})
	viper.SetDefault("scripts.tsconfig", "")

	viper.SetDefault("clean.ignore", []string{"**/package.json", "**/README.md", "**/CHANGELOG.md"})
	viper.SetDefault("watch.delay", "100ms")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// Load decodes and validates the configuration held by Viper.
func Load() (*Config, error) {
	SetDefaults()

	var config Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToTargetHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(&config, hook); err != nil {
		return nil, kiterrors.WrapConfig(err, kiterrors.ErrCodeInvalidDefinition, "decoding configuration")
	}

	if config.Name == "" || config.Version == "" {
		if pkg, err := version.ReadPackage(afero.NewOsFs(), config.Root); err == nil {
			if config.Name == "" {
				config.Name = pkg.Name
			}
			if config.Version == "" {
				config.Version = pkg.Version
			}
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, kiterrors.WrapConfig(err, kiterrors.ErrCodeInvalidDefinition, "invalid configuration")
	}

	return &config, nil
}

// Resolver builds the path resolver for this configuration.
func (c *Config) Resolver() (*paths.Resolver, error) {
	return paths.NewResolver(c.Root, c.Target, c.Layout)
}

// LoggerConfig maps the log settings onto a logging configuration.
func (c *Config) LoggerConfig() (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = c.Log.Format
	return lc, nil
}

var targetType = reflect.TypeOf(paths.Target(0))

func stringToTargetHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != targetType {
		return data, nil
	}
	return paths.ParseTarget(strings.ToLower(strings.TrimSpace(data.(string))))
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if config.Root == "" {
		return fmt.Errorf("root cannot be empty")
	}

	segments := map[string]string{
		"layout.src":     config.Layout.Src,
		"layout.dist":    config.Layout.Dist,
		"layout.package": config.Layout.Package,
		"layout.app":     config.Layout.App,
	}
	for key, segment := range segments {
		if err := validation.ValidateRelativePath(segment); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	ns := config.Layout.Namespace
	if ns == "" || strings.ContainsAny(ns, `/\`) {
		return fmt.Errorf("layout.namespace must be a single directory name, got %q", ns)
	}
	if err := validation.ValidateRelativePath(ns); err != nil {
		return fmt.Errorf("layout.namespace: %w", err)
	}

	if err := config.Styles.Validate(); err != nil {
		return fmt.Errorf("styles: %w", err)
	}
	if err := config.Scripts.Validate(); err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	if config.Scripts.Tsconfig != "" {
		if err := validation.ValidateRelativePath(config.Scripts.Tsconfig); err != nil {
			return fmt.Errorf("scripts.tsconfig: %w", err)
		}
	}

	if _, err := assets.NewMatcher(config.Clean.Ignore...); err != nil {
		return fmt.Errorf("clean.ignore: %w", err)
	}

	if config.Watch.Delay <= 0 {
		return fmt.Errorf("watch.delay must be positive, got %s", config.Watch.Delay)
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", config.Log.Format)
	}

	return nil
}
