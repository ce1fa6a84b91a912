// Package components discovers component definitions and generates the
// data files derived from them: test fixtures and macro option listings.
//
// A definition lives at components/<name>/<name>.yaml and holds a params
// list documenting the macro options and an examples list of named option
// sets.
package components

import (
	"context"
	"path"

	"github.com/conneroisu/frontkit/internal/adapters"
	"github.com/conneroisu/frontkit/internal/adapters/configs"
	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/afero"
)

const (
	// DefaultPattern matches component definitions beneath a source root.
	DefaultPattern = "components/*/*.yaml"

	FixturesFile     = "fixtures.json"
	MacroOptionsFile = "macro-options.json"
)

// Fixture is one example as written to fixtures.json.
type Fixture struct {
	Name        string                 `json:"name"`
	Options     map[string]interface{} `json:"options"`
	Hidden      bool                   `json:"hidden"`
	Description string                 `json:"description"`
}

// Fixtures is the content of fixtures.json.
type Fixtures struct {
	Component string    `json:"component"`
	Fixtures  []Fixture `json:"fixtures"`
}

// Adapter scans component definitions.
type Adapter struct {
	logger    logging.Logger
	namespace string
}

// New creates a components adapter. namespace prefixes macro names.
func New(logger logging.Logger, namespace string) *Adapter {
	return &Adapter{logger: adapters.Logger(logger, "components"), namespace: namespace}
}

// Scan loads every definition under opts.SrcPath matching pattern into a
// registry.
func (a *Adapter) Scan(ctx context.Context, pattern string, opts assets.Options) (*Registry, error) {
	found, err := a.load(ctx, pattern, opts)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, c := range found {
		registry.Register(c)
	}
	a.logger.Debug(ctx, "Scanned components", "pattern", pattern, "count", registry.Count())
	return registry, nil
}

// GenerateFixtures writes fixtures.json beside each matched definition,
// beneath opts.DestPath.
func (a *Adapter) GenerateFixtures(ctx context.Context, pattern string, opts assets.Options) error {
	return a.generate(ctx, pattern, opts, FixturesFile, func(c *Component) interface{} {
		fixtures := Fixtures{Component: c.Name, Fixtures: make([]Fixture, 0, len(c.Definition.Examples))}
		for _, ex := range c.Definition.Examples {
			fixtures.Fixtures = append(fixtures.Fixtures, Fixture{
				Name:        ex.Name,
				Options:     ex.Options,
				Hidden:      ex.Hidden,
				Description: ex.Description,
			})
		}
		return fixtures
	})
}

// GenerateMacroOptions writes macro-options.json, the params list of each
// matched definition.
func (a *Adapter) GenerateMacroOptions(ctx context.Context, pattern string, opts assets.Options) error {
	return a.generate(ctx, pattern, opts, MacroOptionsFile, func(c *Component) interface{} {
		if c.Definition.Params == nil {
			return []Param{}
		}
		return c.Definition.Params
	})
}

func (a *Adapter) generate(ctx context.Context, pattern string, opts assets.Options, file string, build func(*Component) interface{}) error {
	found, err := a.load(ctx, pattern, opts)
	if err != nil {
		return err
	}

	if opts.FilePath == nil {
		opts.FilePath = func(p assets.ParsedPath) string { return p.Join(file) }
	}

	fsys := opts.FS()
	for _, c := range found {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := opts.Output(path.Join(c.Dir, c.Name+".yaml"), "")
		if err != nil {
			return err
		}
		data, err := configs.MarshalJSON(build(c))
		if err != nil {
			return err
		}
		if err := assets.WriteFile(fsys, out, data, 0o644); err != nil {
			return err
		}
	}

	a.logger.Info(ctx, "Generated "+file, "pattern", pattern, "count", len(found), "dest", opts.DestPath)
	return nil
}

// load reads and parses the matched definitions concurrently. Files whose
// name does not match their directory are not definitions and are skipped.
func (a *Adapter) load(ctx context.Context, pattern string, opts assets.Options) ([]*Component, error) {
	matches, err := adapters.Resolve(ctx, a.logger, pattern, opts)
	if err != nil {
		return nil, err
	}

	definitions := matches[:0:0]
	for _, m := range matches {
		parsed := assets.Parse(m.Rel)
		if path.Base(parsed.Dir) != parsed.Name {
			a.logger.Debug(ctx, "Skipping non-definition", "path", m.Rel)
			continue
		}
		definitions = append(definitions, m)
	}

	fsys := opts.FS()
	return iter.MapErr(definitions, func(m *assets.Match) (*Component, error) {
		data, err := afero.ReadFile(fsys, m.Path)
		if err != nil {
			return nil, kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "reading component definition", m.Path)
		}
		def, err := ParseDefinition(m.Path, data)
		if err != nil {
			return nil, err
		}

		parsed := assets.Parse(m.Rel)
		return &Component{
			Name:       parsed.Name,
			MacroName:  MacroName(a.namespace, parsed.Name),
			Dir:        parsed.Dir,
			Path:       m.Path,
			Definition: def,
		}, nil
	})
}
