// Package config loads the optional winzig configuration file.
//
// A file may be TOML (the default) or YAML (.yaml / .yml). Either way the
// decoded document is checked against an embedded JSON Schema before it is
// laid over Default(), so a typo in a key or a value of the wrong type is an
// error rather than a silently ignored setting.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a configuration file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Config holds every setting the winzig tool reads from a file.
type Config struct {
	Output      Output      `json:"output"`
	Tokens      Tokens      `json:"tokens"`
	Diagnostics Diagnostics `json:"diagnostics"`
	Log         Log         `json:"log"`
}

// Output controls how parse trees are written.
type Output struct {
	Format string `json:"format"` // text, json, yaml or cbor
	Indent string `json:"indent"` // indent unit of the text format
}

// Tokens controls the token listing.
type Tokens struct {
	Comments bool `json:"comments"` // list comment tokens too
}

// Diagnostics controls error reports.
type Diagnostics struct {
	Hints bool `json:"hints"`
}

// Log configures the tool's structured logger.
type Log struct {
	Level  string `json:"level"`  // debug, info, warn or error
	Format string `json:"format"` // text or json
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Output:      Output{Format: "text", Indent: "."},
		Tokens:      Tokens{Comments: true},
		Diagnostics: Diagnostics{Hints: true},
		Log:         Log{Level: "warn", Format: "text"},
	}
}

// DefaultNames are the file names Discover looks for, in order.
var DefaultNames = []string{".winzig.toml", ".winzig.yaml", ".winzig.yml"}

// Discover returns the first of DefaultNames present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range DefaultNames {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
	}
	return "", false
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Load reads, validates and applies the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, DetectFormat(path))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the given format, validates it and returns it laid
// over Default(). Keys absent from data keep their default values.
func Parse(data []byte, format Format) (Config, error) {
	var doc map[string]any
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return Config{}, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Config{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %v", format)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	// Both decoders are funnelled through JSON so the schema sees plain JSON
	// values (float64, map[string]any) whatever the source syntax was.
	raw, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("normalise config: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Config{}, fmt.Errorf("normalise config: %w", err)
	}
	if err := configSchema.Validate(generic); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("apply config: %w", err)
	}
	return cfg, nil
}

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "winzig://config.schema.json"

var configSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("config schema: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}()
