// Package pipeline assembles the build definitions from the compilation
// adapters and the path resolver.
package pipeline

import (
	"context"
	"path/filepath"

	"github.com/conneroisu/frontkit/internal/adapters/components"
	"github.com/conneroisu/frontkit/internal/adapters/configs"
	"github.com/conneroisu/frontkit/internal/adapters/files"
	"github.com/conneroisu/frontkit/internal/adapters/scripts"
	"github.com/conneroisu/frontkit/internal/adapters/styles"
	"github.com/conneroisu/frontkit/internal/assets"
	"github.com/conneroisu/frontkit/internal/config"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/conneroisu/frontkit/internal/paths"
	"github.com/conneroisu/frontkit/internal/task"
	"github.com/conneroisu/frontkit/internal/version"
	"github.com/conneroisu/frontkit/internal/watcher"
)

var (
	// testSources never ship.
	testSources = []string{"**/*.test.*", "**/__snapshots__/**", "**/__fixtures__/**"}

	kitConfigPattern = "*.config.{yaml,yml,json,toml}"
)

// Builder turns entries into task trees.
type Builder struct {
	config     *config.Config
	resolver   *paths.Resolver
	logger     logging.Logger
	files      *files.Adapter
	styles     *styles.Adapter
	configs    *configs.Adapter
	components *components.Adapter
}

// Option configures a Builder.
type Option func(*builderOptions)

type builderOptions struct {
	compiler styles.Compiler
}

// WithStyleCompiler replaces the sass CLI.
func WithStyleCompiler(compiler styles.Compiler) Option {
	return func(o *builderOptions) { o.compiler = compiler }
}

// New creates a Builder for cfg.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) (*Builder, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	var o builderOptions
	for _, opt := range opts {
		opt(&o)
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}

	// Load paths are relative to the project root, not the working directory.
	sassConfig := cfg.Styles
	sassConfig.LoadPaths = make([]string, len(cfg.Styles.LoadPaths))
	for i, p := range cfg.Styles.LoadPaths {
		if !filepath.IsAbs(p) {
			p = resolver.Join(paths.RoleRoot, p)
		}
		sassConfig.LoadPaths[i] = p
	}

	var sass *styles.Adapter
	if o.compiler != nil {
		sass = styles.NewWithCompiler(logger, o.compiler, sassConfig.LoadPaths)
	} else if sass, err = styles.New(logger, sassConfig); err != nil {
		return nil, err
	}

	return &Builder{
		config:     cfg,
		resolver:   resolver,
		logger:     logger,
		files:      files.New(logger),
		styles:     sass,
		configs:    configs.New(logger),
		components: components.New(logger, cfg.Layout.Namespace),
	}, nil
}

// Resolver returns the resolver entries are built against.
func (b *Builder) Resolver() *paths.Resolver {
	return b.resolver
}

// Build assembles the task tree of entry. The tree is validated; a
// conflicting definition is returned as an error and nothing runs.
func (b *Builder) Build(entry Entry) (*task.Task, error) {
	var (
		t   *task.Task
		err error
	)
	switch entry {
	case CleanPackage:
		t = b.clean(paths.TargetPackage)
	case CleanDist:
		t = b.clean(paths.TargetDist)
	case CleanApp:
		t = b.clean(paths.TargetApp)
	case BuildPackage:
		t, err = b.buildPackage()
	case BuildDist:
		t, err = b.buildDist()
	case BuildApp:
		t, err = b.buildApp()
	case WatchApp:
		t, err = b.watchApp()
	case Styles:
		t, err = b.stylesTask(b.resolver.Output())
	case Scripts:
		t, err = b.scriptsTask(b.resolver.Output())
	case Fixtures:
		t, err = b.fixturesTask(b.resolver.Output())
	default:
		return nil, kiterrors.NewConfigError(kiterrors.ErrCodeUnknownEntry, "unknown entry "+entry.String())
	}
	if err != nil {
		return nil, err
	}

	t = task.Name(entry.String(), t)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// BuildAll assembles entries to run one after another.
func (b *Builder) BuildAll(entries []Entry) (*task.Task, error) {
	tasks := make([]*task.Task, 0, len(entries))
	for _, e := range entries {
		t, err := b.Build(e)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 1 {
		return tasks[0], nil
	}
	return task.Series(tasks...), nil
}

func (b *Builder) sources() string {
	ns, _, _ := b.resolver.Namespace()
	return b.resolver.Join(paths.RoleSrc, ns)
}

func (b *Builder) options(src, dest string) (assets.Options, error) {
	opts, err := b.resolver.Options(src, dest)
	if err != nil {
		return assets.Options{}, err
	}
	if tsconfig := b.config.Scripts.Tsconfig; tsconfig != "" {
		opts = opts.WithConfig(b.resolver.Join(paths.RoleRoot, tsconfig))
	}
	return assets.FromTask(opts), nil
}

// compileFunc is the Compile or Copy method of an adapter.
type compileFunc func(ctx context.Context, pattern string, opts assets.Options) error

// compileLeaf runs compile over entry, reading from its source directory.
func compileLeaf(name string, entry assets.AssetEntry, compile compileFunc, writes ...string) *task.Task {
	return task.New(name, func(ctx context.Context) error {
		return compile(ctx, entry.ModulePath, entry.Options)
	}, task.Reads(entry.Options.SrcPath), task.Writes(writes...))
}

func (b *Builder) clean(target paths.Target) *task.Task {
	dest := b.resolver.OutputOf(target)
	opts := assets.Options{DestPath: dest, Ignore: b.config.Clean.Ignore}
	return task.New("clean:"+target.String(), func(ctx context.Context) error {
		return b.files.Clean(ctx, "**/*", opts)
	}, task.Writes(dest))
}

func (b *Builder) buildPackage() (*task.Task, error) {
	src := b.sources()
	ns, esm, kit := b.resolver.Namespace()
	plain := b.resolver.Join(paths.RolePackage, ns)
	modules := b.resolver.Join(paths.RolePackage, esm)
	kitSrc := b.resolver.Join(paths.RoleSrc, kit)
	kitDest := b.resolver.Join(paths.RolePackage, kit)

	copyOpts, err := b.options(src, plain)
	if err != nil {
		return nil, err
	}
	copyOpts.Ignore = testSources

	esmOpts, err := b.options(src, modules)
	if err != nil {
		return nil, err
	}
	esmOpts.Ignore = testSources

	umdOpts := copyOpts
	umdOpts.FilePath = assets.WithExt(".js")

	componentOpts, err := b.options(src, plain)
	if err != nil {
		return nil, err
	}

	kitOpts, err := b.options(kitSrc, kitDest)
	if err != nil {
		return nil, err
	}

	esmCompiler := scripts.New(b.logger, scripts.Config{
		Format: scripts.FormatESM,
		Target: b.config.Scripts.Target,
		Banner: b.config.Scripts.Banner,
	})
	umdCompiler := scripts.New(b.logger, scripts.Config{
		Format:     scripts.FormatUMD,
		GlobalName: b.config.Scripts.GlobalName,
		Bundle:     true,
		Target:     b.config.Scripts.Target,
		Banner:     b.config.Scripts.Banner,
	})

	assetOpts := copyOpts
	assetOpts.Ignore = nil

	return task.Series(
		b.clean(paths.TargetPackage),
		task.Parallel(
			compileLeaf("copy:sources", assets.AssetEntry{ModulePath: "**/*.{scss,njk}", Options: copyOpts}, b.files.Copy,
				filepath.Join(plain, "**", "*.scss"),
				filepath.Join(plain, "**", "*.njk"),
			),
			compileLeaf("scripts:esm", assets.AssetEntry{ModulePath: "**/*.mjs", Options: esmOpts}, esmCompiler.Compile,
				filepath.Join(modules, "**", "*.mjs")),
			compileLeaf("scripts:umd", assets.AssetEntry{ModulePath: "**/*.mjs", Options: umdOpts}, umdCompiler.Compile,
				filepath.Join(plain, "**", "*.js")),
			b.fixturesLeaf(componentOpts),
			b.macroOptionsLeaf(componentOpts),
			compileLeaf("config:prototype-kit", assets.AssetEntry{ModulePath: kitConfigPattern, Options: kitOpts}, b.configs.Compile,
				filepath.Join(kitDest, "*.json")),
		),
		task.New("copy:assets", func(ctx context.Context) error {
			return b.files.Copy(ctx, "assets/**/*", assetOpts)
		}, task.Reads(filepath.Join(src, "assets")), task.Writes(filepath.Join(plain, "assets"))),
	), nil
}

func (b *Builder) buildDist() (*task.Task, error) {
	if b.config.Name == "" || b.config.Version == "" {
		return nil, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidDefinition,
			"release name and version are unknown: set name and version or add a package.json to the root")
	}
	stem := version.Versioned(b.config.Name, b.config.Version)

	src := b.sources()
	dest := b.resolver.OutputOf(paths.TargetDist)
	opts, err := b.options(src, dest)
	if err != nil {
		return nil, err
	}

	styleOpts := opts
	styleOpts.FilePath = func(p assets.ParsedPath) string { return p.Join(stem + ".min.css") }
	scriptOpts := opts
	scriptOpts.FilePath = func(p assets.ParsedPath) string { return p.Join(stem + ".min.js") }

	compiler := scripts.New(b.logger, b.config.Scripts)
	versionFile := filepath.Join(dest, "VERSION.txt")
	release := b.config.Version

	return task.Series(
		b.clean(paths.TargetDist),
		task.Parallel(
			compileLeaf("styles:dist", assets.AssetEntry{ModulePath: "all.scss", Options: styleOpts}, b.styles.Compile,
				filepath.Join(dest, "*.css")),
			compileLeaf("scripts:dist", assets.AssetEntry{ModulePath: "all.mjs", Options: scriptOpts}, compiler.Compile,
				filepath.Join(dest, "*.js")),
			task.New("copy:assets", func(ctx context.Context) error {
				return b.files.Copy(ctx, "assets/**/*", opts)
			}, task.Reads(filepath.Join(src, "assets")), task.Writes(filepath.Join(dest, "assets"))),
		),
		task.New("version", func(ctx context.Context) error {
			if err := assets.WriteFile(opts.FS(), versionFile, []byte(release+"\n"), 0o644); err != nil {
				return err
			}
			b.logger.Info(ctx, "Wrote version file", "path", versionFile, "version", release)
			return nil
		}, task.Writes(versionFile)),
	), nil
}

func (b *Builder) buildApp() (*task.Task, error) {
	out := b.resolver.OutputOf(paths.TargetApp)
	css, err := b.stylesTask(out)
	if err != nil {
		return nil, err
	}
	js, err := b.scriptsTask(out)
	if err != nil {
		return nil, err
	}
	return task.Series(b.clean(paths.TargetApp), task.Parallel(css, js)), nil
}

func (b *Builder) watchApp() (*task.Task, error) {
	out := b.resolver.OutputOf(paths.TargetApp)
	src := b.sources()

	css, err := b.stylesTask(out)
	if err != nil {
		return nil, err
	}
	js, err := b.scriptsTask(out)
	if err != nil {
		return nil, err
	}
	fixtures, err := b.fixturesTask(out)
	if err != nil {
		return nil, err
	}

	watch := func(name, pattern string, t *task.Task) *task.Task {
		binding := watcher.Binding{Root: src, Patterns: []string{pattern}, Ignore: testSources, Task: t}
		return task.New(name, func(ctx context.Context) error {
			w := watcher.New(b.logger, watcher.WithDelay(b.config.Watch.Delay))
			return w.Watch(ctx, binding)
		}, task.Reads(src))
	}

	return task.Parallel(
		watch("watch:styles", "**/*.scss", css),
		watch("watch:scripts", "**/*.mjs", js),
		watch("watch:fixtures", "**/*.yaml", fixtures),
	), nil
}

// stylesTask compiles every non-partial stylesheet to out/stylesheets.
func (b *Builder) stylesTask(out string) (*task.Task, error) {
	src := b.sources()
	dest := filepath.Join(out, "stylesheets")
	opts, err := b.options(src, dest)
	if err != nil {
		return nil, err
	}
	opts.Ignore = testSources
	opts.FilePath = func(p assets.ParsedPath) string { return p.Join(p.Name + ".min.css") }

	return compileLeaf("styles", assets.AssetEntry{ModulePath: "**/[!_]*.scss", Options: opts}, b.styles.Compile, dest), nil
}

// scriptsTask bundles the all.mjs entry to out/javascripts.
func (b *Builder) scriptsTask(out string) (*task.Task, error) {
	src := b.sources()
	dest := filepath.Join(out, "javascripts")
	opts, err := b.options(src, dest)
	if err != nil {
		return nil, err
	}
	opts.FilePath = func(p assets.ParsedPath) string { return p.Join(p.Name + ".min.js") }

	compiler := scripts.New(b.logger, b.config.Scripts)
	return compileLeaf("scripts", assets.AssetEntry{ModulePath: "all.mjs", Options: opts}, compiler.Compile, dest), nil
}

// fixturesTask generates fixtures and macro options beneath out/<ns>.
func (b *Builder) fixturesTask(out string) (*task.Task, error) {
	ns, _, _ := b.resolver.Namespace()
	opts, err := b.options(b.sources(), filepath.Join(out, ns))
	if err != nil {
		return nil, err
	}
	return task.Parallel(b.fixturesLeaf(opts), b.macroOptionsLeaf(opts)), nil
}

func (b *Builder) fixturesLeaf(opts assets.Options) *task.Task {
	return task.New("fixtures", func(ctx context.Context) error {
		return b.components.GenerateFixtures(ctx, components.DefaultPattern, opts)
	}, task.Reads(opts.SrcPath), task.Writes(filepath.Join(opts.DestPath, "**", components.FixturesFile)))
}

func (b *Builder) macroOptionsLeaf(opts assets.Options) *task.Task {
	return task.New("macro-options", func(ctx context.Context) error {
		return b.components.GenerateMacroOptions(ctx, components.DefaultPattern, opts)
	}, task.Reads(opts.SrcPath), task.Writes(filepath.Join(opts.DestPath, "**", components.MacroOptionsFile)))
}
