package confidence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format parses configuration text into plain values and serializes plain
// values back to text. The YAML, JSON and TOML instances cover the common
// formats; the interface is open for callers bringing their own.
type Format interface {
	// String names the format, e.g. "yaml".
	String() string

	// Extensions lists the file suffixes associated with the format,
	// including the leading dot.
	Extensions() []string

	// Loads parses a document. An empty document yields nil.
	Loads(document string) (any, error)

	// Dumps serializes a value, unwrapping namespaces and sequence views
	// first.
	Dumps(value any) (string, error)
}

// Format instances ready for use. YAML is the package default.
var (
	YAML Format = yamlFormat{}
	JSON Format = jsonFormat{}
	TOML Format = tomlFormat{}
)

// DetectFormat determines the format for a file path by extension, or nil
// when the extension is not recognized.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".json":
		return JSON
	case ".toml", ".tml":
		return TOML
	default:
		return nil
	}
}

type yamlFormat struct{}

func (yamlFormat) String() string       { return "yaml" }
func (yamlFormat) Extensions() []string { return []string{".yaml", ".yml"} }

func (yamlFormat) Loads(document string) (any, error) {
	var value any
	if err := yaml.Unmarshal([]byte(document), &value); err != nil {
		return nil, fmt.Errorf("failed to parse YAML document: %w", err)
	}
	return value, nil
}

func (yamlFormat) Dumps(value any) (string, error) {
	out, err := yaml.Marshal(unwrapDeep(value))
	if err != nil {
		return "", fmt.Errorf("failed to serialize value to YAML: %w", err)
	}
	return string(out), nil
}

type jsonFormat struct{}

func (jsonFormat) String() string       { return "json" }
func (jsonFormat) Extensions() []string { return []string{".json"} }

func (jsonFormat) Loads(document string) (any, error) {
	if strings.TrimSpace(document) == "" {
		return nil, nil
	}
	var value any
	decoder := json.NewDecoder(strings.NewReader(document))
	decoder.UseNumber() // preserve number precision
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	return value, nil
}

func (jsonFormat) Dumps(value any) (string, error) {
	out, err := json.Marshal(unwrapDeep(value))
	if err != nil {
		return "", fmt.Errorf("failed to serialize value to JSON: %w", err)
	}
	return string(out), nil
}

type tomlFormat struct{}

func (tomlFormat) String() string       { return "toml" }
func (tomlFormat) Extensions() []string { return []string{".toml", ".tml"} }

func (tomlFormat) Loads(document string) (any, error) {
	if strings.TrimSpace(document) == "" {
		return nil, nil
	}
	value := make(map[string]any)
	if err := toml.Unmarshal([]byte(document), &value); err != nil {
		return nil, fmt.Errorf("failed to parse TOML document: %w", err)
	}
	return value, nil
}

func (tomlFormat) Dumps(value any) (string, error) {
	plain, ok := unwrapDeep(value).(map[string]any)
	if !ok {
		return "", fmt.Errorf("TOML documents require a mapping at the top level, got %T", value)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(plain); err != nil {
		return "", fmt.Errorf("failed to serialize value to TOML: %w", err)
	}
	return buf.String(), nil
}

// unwrapDeep strips namespace and sequence-view wrapping at any depth,
// returning plain data fit for a serializer. The internal tree never holds
// wrappers, but caller-assembled values handed to Dumps may.
func unwrapDeep(value any) any {
	switch v := Unwrap(value).(type) {
	case map[string]any:
		plain := make(map[string]any, len(v))
		for key, item := range v {
			plain[key] = unwrapDeep(item)
		}
		return plain
	case []any:
		plain := make([]any, len(v))
		for i, item := range v {
			plain[i] = unwrapDeep(item)
		}
		return plain
	default:
		return v
	}
}
