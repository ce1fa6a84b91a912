package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/frontkit/internal/adapters/scripts"
	"github.com/conneroisu/frontkit/internal/adapters/styles"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/conneroisu/frontkit/internal/paths"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("root", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	reset(t)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, paths.TargetPackage, config.Target)
	assert.Equal(t, paths.DefaultLayout(), config.Layout)
	assert.Equal(t, "sass", config.Styles.Command)
	assert.Equal(t, styles.StyleCompressed, config.Styles.Style)
	assert.Equal(t, []string{"node_modules"}, config.Styles.LoadPaths)
	assert.Equal(t, scripts.FormatIIFE, config.Scripts.Format)
	assert.Equal(t, "GOVUKFrontend", config.Scripts.GlobalName)
	assert.True(t, config.Scripts.Minify)
	assert.Equal(t, []string{"**/package.json", "**/README.md", "**/CHANGELOG.md"}, config.Clean.Ignore)
	assert.Equal(t, 100*time.Millisecond, config.Watch.Delay)
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.Version)
}

func TestLoadOverrides(t *testing.T) {
	reset(t)
	viper.Set("target", "app")
	viper.Set("layout.namespace", "moj")
	viper.Set("styles.style", "expanded")
	viper.Set("scripts.format", "esm")
	viper.Set("watch.delay", "250ms")
	viper.Set("version", "9.9.9")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, paths.TargetApp, config.Target)
	assert.Equal(t, "moj", config.Layout.Namespace)
	assert.Equal(t, styles.StyleExpanded, config.Styles.Style)
	assert.Equal(t, scripts.FormatESM, config.Scripts.Format)
	assert.Equal(t, 250*time.Millisecond, config.Watch.Delay)
	assert.Equal(t, "9.9.9", config.Version)
}

func TestLoadEnvironment(t *testing.T) {
	reset(t)
	BindEnv()
	t.Setenv("FRONTKIT_TARGET", "dist")
	t.Setenv("FRONTKIT_STYLES_LOAD_PATHS", "node_modules,vendor")
	t.Setenv("FRONTKIT_WATCH_DELAY", "40ms")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, paths.TargetDist, config.Target)
	assert.Equal(t, []string{"node_modules", "vendor"}, config.Styles.LoadPaths)
	assert.Equal(t, 40*time.Millisecond, config.Watch.Delay)

	resolver, err := config.Resolver()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(config.Root, "dist"), resolver.Output())
}

func TestLoadPackageManifest(t *testing.T) {
	reset(t)
	root := viper.GetString("root")
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"),
		[]byte(`{"name": "govuk-frontend", "version": "5.4.1"}`), 0o644))

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "govuk-frontend", config.Name)
	assert.Equal(t, "5.4.1", config.Version)

	viper.Set("version", "6.0.0-beta.0")
	config, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "6.0.0-beta.0", config.Version, "explicit version wins")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{name: "unknown target", key: "target", val: "cdn"},
		{name: "traversal in layout", key: "layout.src", val: "../elsewhere"},
		{name: "absolute layout", key: "layout.dist", val: "/tmp/dist"},
		{name: "nested namespace", key: "layout.namespace", val: "govuk/esm"},
		{name: "compiler not allowed", key: "styles.command", val: "rm"},
		{name: "unknown sass style", key: "styles.style", val: "nested"},
		{name: "unknown script format", key: "scripts.format", val: "amd"},
		{name: "unknown script target", key: "scripts.target", val: "es3"},
		{name: "tsconfig outside root", key: "scripts.tsconfig", val: "../tsconfig.json"},
		{name: "bad ignore glob", key: "clean.ignore", val: []string{"[oops"}},
		{name: "zero delay", key: "watch.delay", val: "0s"},
		{name: "bad log level", key: "log.level", val: "loud"},
		{name: "bad log format", key: "log.format", val: "xml"},
		{name: "empty root", key: "root", val: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t)
			viper.Set(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.True(t, kiterrors.IsConfigError(err), "got %v", err)
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	config := &Config{Log: LogConfig{Level: "debug", Format: "json"}}
	lc, err := config.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
}
