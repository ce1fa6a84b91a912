package components

import (
	"context"
	"testing"

	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buttonYAML = `params:
  - name: text
    type: string
    required: true
    description: Text for the button.
  - name: attributes
    type: object
    required: false
    description: HTML attributes to add to the button.
examples:
  - name: default
    options:
      text: Save and continue
  - name: disabled
    description: A disabled button
    options:
      text: Disabled button
      disabled: true
  - name: with attributes
    hidden: true
    options:
      text: Submit
      attributes:
        aria-controls: example-id
`

const characterCountYAML = `params:
  - name: textarea
    type: object
    required: true
    description: Options for the textarea.
    isComponent: true
    params:
      - name: id
        type: string
        required: true
        description: The id of the textarea.
examples:
  - name: default
    options:
      textarea:
        id: more-detail
      maxlength: 10
`

func seed(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, "/src/"+name, []byte(content), 0o644))
	}
	return fsys
}

func srcOpts(fsys afero.Fs) assets.Options {
	return assets.Options{SrcPath: "/src", DestPath: "/package", Fs: fsys}
}

func TestScan(t *testing.T) {
	fsys := seed(t, map[string]string{
		"components/button/button.yaml":                   buttonYAML,
		"components/character-count/character-count.yaml": characterCountYAML,
		"components/button/notes.yaml":                    "not: a definition\n",
	})

	registry, err := New(nil, "govuk").Scan(context.Background(), DefaultPattern, srcOpts(fsys))
	require.NoError(t, err)
	require.Equal(t, 2, registry.Count())

	all := registry.All()
	assert.Equal(t, "button", all[0].Name)
	assert.Equal(t, "govukButton", all[0].MacroName)
	assert.Equal(t, "components/button", all[0].Dir)
	assert.Equal(t, "/src/components/button/button.yaml", all[0].Path)
	assert.Len(t, all[0].Definition.Examples, 3)

	cc, ok := registry.Get("character-count")
	require.True(t, ok)
	assert.Equal(t, "govukCharacterCount", cc.MacroName)
}

func TestGenerateFixtures(t *testing.T) {
	fsys := seed(t, map[string]string{"components/button/button.yaml": buttonYAML})

	err := New(nil, "govuk").GenerateFixtures(context.Background(), DefaultPattern, srcOpts(fsys))
	require.NoError(t, err)

	got, err := afero.ReadFile(fsys, "/package/components/button/fixtures.json")
	require.NoError(t, err)
	assert.Equal(t, `{
  "component": "button",
  "fixtures": [
    {
      "name": "default",
      "options": {
        "text": "Save and continue"
      },
      "hidden": false,
      "description": ""
    },
    {
      "name": "disabled",
      "options": {
        "disabled": true,
        "text": "Disabled button"
      },
      "hidden": false,
      "description": "A disabled button"
    },
    {
      "name": "with attributes",
      "options": {
        "attributes": {
          "aria-controls": "example-id"
        },
        "text": "Submit"
      },
      "hidden": true,
      "description": ""
    }
  ]
}
`, string(got))
}

func TestGenerateFixturesDeterministic(t *testing.T) {
	fsys := seed(t, map[string]string{
		"components/button/button.yaml":                   buttonYAML,
		"components/character-count/character-count.yaml": characterCountYAML,
	})
	adapter := New(nil, "govuk")

	read := func() []byte {
		require.NoError(t, adapter.GenerateFixtures(context.Background(), DefaultPattern, srcOpts(fsys)))
		data, err := afero.ReadFile(fsys, "/package/components/character-count/fixtures.json")
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, read(), read())
}

func TestGenerateFixturesDuplicateNames(t *testing.T) {
	fsys := seed(t, map[string]string{
		"components/button/button.yaml": buttonYAML,
		"components/input/input.yaml": `examples:
  - name: default
    options: {}
  - name: default
    options: {label: {text: Name}}
`,
	})

	err := New(nil, "govuk").GenerateFixtures(context.Background(), DefaultPattern, srcOpts(fsys))
	require.Error(t, err)
	assert.True(t, kiterrors.IsType(err, kiterrors.ErrorTypeValidation), "got %v", err)
	assert.Contains(t, err.Error(), `duplicate example name "default"`)

	ok, _ := afero.Exists(fsys, "/package/components/button/fixtures.json")
	assert.False(t, ok, "nothing is written when a definition is invalid")
}

func TestGenerateMacroOptions(t *testing.T) {
	fsys := seed(t, map[string]string{
		"components/character-count/character-count.yaml": characterCountYAML,
		"components/skip-link/skip-link.yaml":             "examples:\n  - name: default\n",
	})

	err := New(nil, "govuk").GenerateMacroOptions(context.Background(), DefaultPattern, srcOpts(fsys))
	require.NoError(t, err)

	got, err := afero.ReadFile(fsys, "/package/components/character-count/macro-options.json")
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "name": "textarea",
    "type": "object",
    "required": true,
    "description": "Options for the textarea.",
    "isComponent": true,
    "params": [
      {
        "name": "id",
        "type": "string",
        "required": true,
        "description": "The id of the textarea."
      }
    ]
  }
]
`, string(got))

	empty, err := afero.ReadFile(fsys, "/package/components/skip-link/macro-options.json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(empty))
}

func TestParseDefinitionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "malformed", input: "params: [", want: "decoding component definition"},
		{name: "unnamed example", input: "examples:\n  - options: {}\n", want: "example 1 has no name"},
		{name: "unnamed param", input: "params:\n  - type: string\n", want: "param 1 has no name"},
		{name: "unnamed nested param", input: "params:\n  - name: hint\n    params:\n      - type: string\n", want: `param 1 of "hint" has no name`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition("x.yaml", []byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, kiterrors.IsType(err, kiterrors.ErrorTypeValidation))
		})
	}
}

func TestMacroName(t *testing.T) {
	tests := []struct {
		namespace string
		name      string
		want      string
	}{
		{"govuk", "button", "govukButton"},
		{"govuk", "character-count", "govukCharacterCount"},
		{"govuk", "cookie-banner", "govukCookieBanner"},
		{"moj", "date-picker", "mojDatePicker"},
		{"govuk", "skip--link", "govukSkipLink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MacroName(tt.namespace, tt.name))
		})
	}
}
