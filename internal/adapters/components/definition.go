package components

import (
	"fmt"
	"path"
	"strings"

	"github.com/conneroisu/frontkit/internal/adapters/configs"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Param describes one macro option.
type Param struct {
	Name        string  `yaml:"name" json:"name"`
	Type        string  `yaml:"type" json:"type"`
	Required    bool    `yaml:"required" json:"required"`
	Description string  `yaml:"description" json:"description"`
	IsComponent bool    `yaml:"isComponent,omitempty" json:"isComponent,omitempty"`
	Params      []Param `yaml:"params,omitempty" json:"params,omitempty"`
}

// Example is one documented set of options for a component.
type Example struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Hidden      bool                   `yaml:"hidden"`
	Options     map[string]interface{} `yaml:"options"`
}

// Definition is the content of a component's YAML file.
type Definition struct {
	Params   []Param   `yaml:"params"`
	Examples []Example `yaml:"examples"`
}

// Component is a discovered component definition.
type Component struct {
	Name      string
	MacroName string
	// Dir is the component directory relative to the scanned root.
	Dir string
	// Path is the absolute path of the YAML definition.
	Path       string
	Definition Definition
}

// MacroName builds the macro name for a kebab-case component name, e.g.
// "character-count" in namespace "govuk" is "govukCharacterCount".
func MacroName(namespace, name string) string {
	title := cases.Title(language.English)
	var b strings.Builder
	b.WriteString(namespace)
	for _, part := range strings.Split(name, "-") {
		if part == "" {
			continue
		}
		b.WriteString(title.String(part))
	}
	return b.String()
}

// ParseDefinition decodes and validates a component definition. file is
// used for error locations only.
func ParseDefinition(file string, data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, kiterrors.Wrap(err, kiterrors.ErrorTypeValidation, kiterrors.ErrCodeInvalidDefinition,
			"decoding component definition").WithLocation(file, 0, 0)
	}

	if err := validateParams(file, def.Params, ""); err != nil {
		return Definition{}, err
	}

	seen := make(map[string]int, len(def.Examples))
	for i := range def.Examples {
		ex := &def.Examples[i]
		if ex.Name == "" {
			return Definition{}, kiterrors.NewValidationError(kiterrors.ErrCodeInvalidDefinition,
				fmt.Sprintf("example %d has no name", i+1)).WithLocation(file, 0, 0)
		}
		if first, dup := seen[ex.Name]; dup {
			return Definition{}, kiterrors.NewValidationError(kiterrors.ErrCodeInvalidDefinition,
				fmt.Sprintf("duplicate example name %q (examples %d and %d)", ex.Name, first+1, i+1)).
				WithLocation(file, 0, 0)
		}
		seen[ex.Name] = i

		if ex.Options == nil {
			ex.Options = map[string]interface{}{}
		}
		ex.Options = configs.Normalize(ex.Options).(map[string]interface{})
	}

	return def, nil
}

func validateParams(file string, params []Param, parent string) error {
	for i, p := range params {
		if p.Name == "" {
			where := fmt.Sprintf("param %d", i+1)
			if parent != "" {
				where = fmt.Sprintf("param %d of %q", i+1, parent)
			}
			return kiterrors.NewValidationError(kiterrors.ErrCodeInvalidDefinition, where+" has no name").
				WithLocation(file, 0, 0)
		}
		if err := validateParams(file, p.Params, path.Join(parent, p.Name)); err != nil {
			return err
		}
	}
	return nil
}
