// Package styles compiles Sass entry points to CSS through an external
// compiler process.
package styles

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/conneroisu/frontkit/internal/adapters"
	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/conneroisu/frontkit/internal/validation"
)

// Style is the CSS output style.
type Style string

const (
	StyleExpanded   Style = "expanded"
	StyleCompressed Style = "compressed"
)

// Config controls the stylesheet compiler.
type Config struct {
	Command   string   `mapstructure:"command"`
	Style     Style    `mapstructure:"style"`
	LoadPaths []string `mapstructure:"load_paths"`
	Quiet     bool     `mapstructure:"quiet"`
}

// DefaultConfig runs the sass CLI with compressed output.
func DefaultConfig() Config {
	return Config{
		Command:   "sass",
		Style:     StyleCompressed,
		LoadPaths: []string{"node_modules"},
		Quiet:     true,
	}
}

// Validate checks the command against the compiler allowlist and the
// output style.
func (c Config) Validate() error {
	if err := validation.ValidateCommand(c.Command, validation.AllowedCompilers); err != nil {
		return kiterrors.WrapConfig(err, kiterrors.ErrCodeCommandNotAllowed, "stylesheet compiler rejected").
			WithContext("command", c.Command)
	}
	switch c.Style {
	case StyleExpanded, StyleCompressed, "":
	default:
		return kiterrors.NewConfigError(kiterrors.ErrCodeInvalidDefinition,
			fmt.Sprintf("unknown sass style %q", c.Style))
	}
	for _, p := range c.LoadPaths {
		if err := validation.ValidateArgument(p); err != nil {
			return kiterrors.WrapConfig(err, kiterrors.ErrCodeInvalidPath, "invalid sass load path").
				WithContext("load_path", p)
		}
	}
	return nil
}

// Compiler turns one Sass entry into CSS.
type Compiler interface {
	Compile(ctx context.Context, entry string, loadPaths []string) ([]byte, error)
}

// SassCLI runs a sass-compatible executable, reading CSS from stdout.
type SassCLI struct {
	command string
	style   Style
	quiet   bool
}

// NewSassCLI validates config and returns a CLI compiler.
func NewSassCLI(config Config) (*SassCLI, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	style := config.Style
	if style == "" {
		style = StyleCompressed
	}
	return &SassCLI{command: config.Command, style: style, quiet: config.Quiet}, nil
}

// Args returns the command line for entry, without the command itself.
func (s *SassCLI) Args(entry string, loadPaths []string) []string {
	args := []string{"--no-source-map", "--style=" + string(s.style)}
	if s.quiet {
		args = append(args, "--quiet")
	}
	for _, p := range loadPaths {
		args = append(args, "--load-path="+p)
	}
	return append(args, entry)
}

// Compile runs the compiler. Its stderr is parsed into a located compile
// error on failure.
func (s *SassCLI) Compile(ctx context.Context, entry string, loadPaths []string) ([]byte, error) {
	// #nosec G204 -- command is allowlisted in NewSassCLI
	cmd := exec.CommandContext(ctx, s.command, s.Args(entry, loadPaths)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if stderr.Len() == 0 {
			return nil, kiterrors.NewCompileError(fmt.Sprintf("%s failed", s.command), err).
				WithLocation(entry, 0, 0)
		}
		be := kiterrors.FromDiagnostics(stderr.String(), err)
		if be.FilePath == "" {
			be.WithLocation(entry, 0, 0)
		}
		return nil, be
	}
	return stdout.Bytes(), nil
}

// Adapter compiles stylesheets.
type Adapter struct {
	logger    logging.Logger
	compiler  Compiler
	loadPaths []string
}

// New creates a styles adapter backed by the sass CLI.
func New(logger logging.Logger, config Config) (*Adapter, error) {
	cli, err := NewSassCLI(config)
	if err != nil {
		return nil, err
	}
	return NewWithCompiler(logger, cli, config.LoadPaths), nil
}

// NewWithCompiler creates a styles adapter around any Compiler.
func NewWithCompiler(logger logging.Logger, compiler Compiler, loadPaths []string) *Adapter {
	return &Adapter{
		logger:    adapters.Logger(logger, "styles"),
		compiler:  compiler,
		loadPaths: loadPaths,
	}
}

// Compile compiles every entry under opts.SrcPath matching pattern. The
// source root is always on the load path, ahead of the configured ones.
func (a *Adapter) Compile(ctx context.Context, pattern string, opts assets.Options) error {
	matches, err := adapters.Resolve(ctx, a.logger, pattern, opts)
	if err != nil {
		return err
	}

	loadPaths := append([]string{opts.SrcPath}, a.loadPaths...)
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := opts.Output(m.Rel, ".css")
		if err != nil {
			return err
		}

		css, err := a.compiler.Compile(ctx, m.Path, loadPaths)
		if err != nil {
			return err
		}
		if err := assets.WriteFile(opts.FS(), out, css, 0o644); err != nil {
			return err
		}
		a.logger.Debug(ctx, "Compiled stylesheet", "entry", m.Rel, "output", filepath.ToSlash(out), "bytes", len(css))
	}

	a.logger.Info(ctx, "Compiled styles", "pattern", pattern, "count", len(matches), "dest", opts.DestPath)
	return nil
}
