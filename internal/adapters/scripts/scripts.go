// Package scripts compiles JavaScript entry points with esbuild.
//
// Each matched entry is bundled (its import graph traversed) or, with
// bundling off, transformed on its own. esbuild reads sources from the OS
// filesystem; output is written through the adapter Options filesystem.
package scripts

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/frontkit/internal/adapters"
	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/evanw/esbuild/pkg/api"
)

// Format is the module format of the emitted script.
type Format string

const (
	FormatESM  Format = "esm"
	FormatIIFE Format = "iife"
	FormatCJS  Format = "cjs"
	// FormatUMD assigns the bundle's exports to a global, emitted as an
	// IIFE named by GlobalName.
	FormatUMD Format = "umd"
)

// Config controls how entries are compiled.
type Config struct {
	Format     Format   `mapstructure:"format"`
	GlobalName string   `mapstructure:"global_name"`
	Minify     bool     `mapstructure:"minify"`
	Bundle     bool     `mapstructure:"bundle"`
	Target     string   `mapstructure:"target"`
	Banner     string   `mapstructure:"banner"`
	External   []string `mapstructure:"external"`
	// Tsconfig is a jsconfig or tsconfig file, relative to the project
	// root, whose path aliases resolve imports.
	Tsconfig string `mapstructure:"tsconfig"`
}

// DefaultConfig bundles to a minified ES2015 IIFE.
func DefaultConfig() Config {
	return Config{
		Format: FormatIIFE,
		Minify: true,
		Bundle: true,
		Target: "es2015",
	}
}

// Adapter compiles scripts.
type Adapter struct {
	logger logging.Logger
	config Config
}

// New creates a scripts adapter.
func New(logger logging.Logger, config Config) *Adapter {
	return &Adapter{logger: adapters.Logger(logger, "scripts"), config: config}
}

// Config returns the adapter's compile configuration.
func (a *Adapter) Config() Config {
	return a.config
}

// Validate checks the format and target names.
func (c Config) Validate() error {
	if _, err := c.format(); err != nil {
		return err
	}
	_, err := c.target()
	return err
}

// DefaultExt is the extension given to outputs without a FilePath remap.
func (c Config) DefaultExt() string {
	if c.Format == FormatESM {
		return ".mjs"
	}
	return ".js"
}

// Compile compiles every entry under opts.SrcPath matching pattern.
func (a *Adapter) Compile(ctx context.Context, pattern string, opts assets.Options) error {
	format, err := a.config.format()
	if err != nil {
		return err
	}
	target, err := a.config.target()
	if err != nil {
		return err
	}

	matches, err := adapters.Resolve(ctx, a.logger, pattern, opts)
	if err != nil {
		return err
	}

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := opts.Output(m.Rel, a.config.DefaultExt())
		if err != nil {
			return err
		}

		contents, err := a.build(m.Path, out, opts, format, target)
		if err != nil {
			return err
		}
		if err := assets.WriteFile(opts.FS(), out, contents, 0o644); err != nil {
			return err
		}
		a.logger.Debug(ctx, "Compiled script", "entry", m.Rel, "output", out, "bytes", len(contents))
	}

	a.logger.Info(ctx, "Compiled scripts", "pattern", pattern, "count", len(matches), "dest", opts.DestPath)
	return nil
}

func (a *Adapter) build(entry, out string, opts assets.Options, format api.Format, target api.Target) ([]byte, error) {
	options := api.BuildOptions{
		EntryPoints:       []string{entry},
		Outfile:           out,
		AbsWorkingDir:     opts.SrcPath,
		Tsconfig:          opts.ConfigPath,
		Bundle:            a.config.Bundle,
		Write:             false,
		Format:            format,
		GlobalName:        a.config.GlobalName,
		Target:            target,
		Platform:          api.PlatformBrowser,
		MinifyWhitespace:  a.config.Minify,
		MinifyIdentifiers: a.config.Minify,
		MinifySyntax:      a.config.Minify,
		LogLevel:          api.LogLevelSilent,
		Sourcemap:         api.SourceMapNone,
	}
	if a.config.Bundle {
		options.External = a.config.External
	}
	if a.config.Banner != "" {
		options.Banner = map[string]string{"js": a.config.Banner}
	}

	result := api.Build(options)
	if len(result.Errors) > 0 {
		return nil, fromMessages(result.Errors)
	}

	for _, file := range result.OutputFiles {
		if filepath.Ext(file.Path) != ".map" {
			return file.Contents, nil
		}
	}
	return nil, kiterrors.NewCompileError(fmt.Sprintf("esbuild produced no output for %s", entry), nil)
}

// fromMessages converts esbuild diagnostics, located at the first message.
func fromMessages(messages []api.Message) error {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Location != nil {
			lines = append(lines, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
		} else {
			lines = append(lines, m.Text)
		}
	}

	be := kiterrors.NewCompileError(messages[0].Text, nil)
	if loc := messages[0].Location; loc != nil {
		be.WithLocation(loc.File, loc.Line, loc.Column)
	}
	be.WithContext("output", strings.Join(lines, "\n"))
	return be
}

func (c Config) format() (api.Format, error) {
	switch c.Format {
	case FormatESM:
		return api.FormatESModule, nil
	case FormatIIFE, "":
		return api.FormatIIFE, nil
	case FormatCJS:
		return api.FormatCommonJS, nil
	case FormatUMD:
		if c.GlobalName == "" {
			return api.FormatDefault, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidDefinition,
				"umd scripts need a global name")
		}
		return api.FormatIIFE, nil
	default:
		return api.FormatDefault, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidDefinition,
			fmt.Sprintf("unknown script format %q", c.Format))
	}
}

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

func (c Config) target() (api.Target, error) {
	if c.Target == "" {
		return api.ES2015, nil
	}
	t, ok := targets[strings.ToLower(c.Target)]
	if !ok {
		return api.DefaultTarget, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidDefinition,
			fmt.Sprintf("unknown script target %q", c.Target))
	}
	return t, nil
}
