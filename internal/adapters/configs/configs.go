// Package configs converts configuration documents (YAML, JSON, TOML) to
// normalised JSON.
package configs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/frontkit/internal/adapters"
	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/conneroisu/frontkit/internal/validation"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Extensions lists the document types Compile understands.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// Adapter compiles configuration documents.
type Adapter struct {
	logger logging.Logger
}

// New creates a configs adapter.
func New(logger logging.Logger) *Adapter {
	return &Adapter{logger: adapters.Logger(logger, "configs")}
}

// Compile decodes every matched document and writes it as indented JSON
// with sorted keys, by default beside the source name with a .json
// extension.
func (a *Adapter) Compile(ctx context.Context, pattern string, opts assets.Options) error {
	matches, err := adapters.Resolve(ctx, a.logger, pattern, opts)
	if err != nil {
		return err
	}

	fsys := opts.FS()
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := afero.ReadFile(fsys, m.Path)
		if err != nil {
			return kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "reading config", m.Path)
		}
		out, err := opts.Output(m.Rel, ".json")
		if err != nil {
			return err
		}

		doc, err := Convert(m.Path, data)
		if err != nil {
			return err
		}
		if err := assets.WriteFile(fsys, out, doc, 0o644); err != nil {
			return err
		}
	}

	a.logger.Info(ctx, "Compiled configs", "pattern", pattern, "count", len(matches), "dest", opts.DestPath)
	return nil
}

// Convert decodes data according to the extension of name and encodes it
// as indented JSON.
func Convert(name string, data []byte) ([]byte, error) {
	if err := validation.ValidateFileExtension(name, Extensions); err != nil {
		return nil, kiterrors.NewValidationError(kiterrors.ErrCodeInvalidDefinition, err.Error()).
			WithLocation(name, 0, 0)
	}

	var (
		value interface{}
		err   error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		err = toml.Unmarshal(data, &value)
	default:
		// JSON is a subset of YAML
		err = yaml.Unmarshal(data, &value)
	}
	if err != nil {
		return nil, kiterrors.Wrap(err, kiterrors.ErrorTypeValidation, kiterrors.ErrCodeInvalidDefinition,
			"decoding config").WithLocation(name, 0, 0)
	}
	if value == nil {
		return nil, kiterrors.NewValidationError(kiterrors.ErrCodeInvalidDefinition, "config document is empty").
			WithLocation(name, 0, 0)
	}

	return MarshalJSON(Normalize(value))
}

// MarshalJSON encodes v with two-space indentation, object keys sorted and
// a trailing newline. HTML characters are not escaped.
func MarshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, kiterrors.Wrap(err, kiterrors.ErrorTypeInternal, kiterrors.ErrCodeInternalError, "encoding JSON")
	}
	return buf.Bytes(), nil
}

// Normalize turns decoder maps into map[string]interface{} so they encode
// as JSON objects. Non-string keys are formatted.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			t[k] = Normalize(child)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = Normalize(child)
		}
		return out
	case []interface{}:
		for i, child := range t {
			t[i] = Normalize(child)
		}
		return t
	default:
		return v
	}
}
