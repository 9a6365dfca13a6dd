package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/scopemap/pkg/grammar/schema"
)

// Format is a grammar file encoding.
type Format int

// Supported formats.
const (
	FormatYAML Format = iota + 1
	FormatJSON
	FormatTOML
)

const (
	keyName      = "name"
	keyScopeName = "scopeName"
	keyParser    = "parser"
	keyFileTypes = "fileTypes"
	keyScopes    = "scopes"

	inlineSource = "<inline>"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ScopeEntry is one selector declaration in document order.
type ScopeEntry struct {
	Selector string
	Value    any
}

// Definition is a decoded, not yet compiled, grammar document.
type Definition struct {
	raw       map[string]any
	Name      string
	ScopeName string
	Parser    string
	Source    string
	FileTypes []string
	Scopes    []ScopeEntry
}

// Load reads, decodes and validates a grammar file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}

	return LoadBytes(path, data)
}

// LoadBytes decodes and validates a grammar document; source names it in errors and picks
// the format by extension.
func LoadBytes(source string, data []byte) (*Definition, error) {
	format, err := FormatOf(source)
	if err != nil {
		return nil, err
	}

	def, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	def.Source = source

	err = def.Validate()
	if err != nil {
		return nil, err
	}

	return def, nil
}

// Decode parses a grammar document. Scope declarations keep their document order, which
// decides the winner when two selectors spell the same chain.
func Decode(data []byte, format Format) (*Definition, error) {
	var (
		raw     map[string]any
		entries []ScopeEntry
		err     error
	)

	switch format {
	case FormatYAML, FormatJSON:
		raw, entries, err = decodeYAML(data)
	case FormatTOML:
		raw, entries, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, err
	}

	def := &Definition{
		raw:       raw,
		Name:      stringField(raw, keyName),
		ScopeName: stringField(raw, keyScopeName),
		Parser:    stringField(raw, keyParser),
		FileTypes: stringsField(raw, keyFileTypes),
		Scopes:    entries,
		Source:    inlineSource,
	}

	return def, nil
}

// decodeYAML walks the node tree so that scope order survives; JSON documents take the same
// path.
func decodeYAML(data []byte) (map[string]any, []ScopeEntry, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, nil, fmt.Errorf("decode yaml: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil, ErrEmptyDocument
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, ErrNotMapping
	}

	var raw map[string]any

	err = root.Decode(&raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode yaml: %w", err)
	}

	var entries []ScopeEntry

	for idx := 0; idx+1 < len(root.Content); idx += 2 {
		key, value := root.Content[idx], root.Content[idx+1]
		if key.Value != keyScopes || value.Kind != yaml.MappingNode {
			continue
		}

		for pair := 0; pair+1 < len(value.Content); pair += 2 {
			var decoded any

			err = value.Content[pair+1].Decode(&decoded)
			if err != nil {
				return nil, nil, fmt.Errorf("decode scope %q: %w", value.Content[pair].Value, err)
			}

			entries = append(entries, ScopeEntry{Selector: value.Content[pair].Value, Value: decoded})
		}
	}

	return raw, entries, nil
}

// decodeTOML recovers scope order from the decoder's key metadata.
func decodeTOML(data []byte) (map[string]any, []ScopeEntry, error) {
	var raw map[string]any

	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode toml: %w", err)
	}

	if len(raw) == 0 {
		return nil, nil, ErrEmptyDocument
	}

	scopes, _ := raw[keyScopes].(map[string]any)

	var entries []ScopeEntry

	seen := make(map[string]bool, len(scopes))

	for _, key := range meta.Keys() {
		if len(key) != 2 || key[0] != keyScopes || seen[key[1]] {
			continue
		}

		seen[key[1]] = true
		entries = append(entries, ScopeEntry{Selector: key[1], Value: scopes[key[1]]})
	}

	return raw, entries, nil
}

// Validate checks the document against the embedded grammar schema.
func (d *Definition) Validate() error {
	schemaBytes, err := schema.FS.ReadFile(schema.FileName)
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewGoLoader(d.raw),
	)
	if err != nil {
		return fmt.Errorf("%s: schema validation: %w", d.Source, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))

	for _, resultErr := range result.Errors() {
		problems = append(problems, resultErr.Field()+": "+resultErr.Description())
	}

	return &SchemaError{Source: d.Source, Problems: problems}
}

func stringField(raw map[string]any, key string) string {
	value, _ := raw[key].(string)

	return value
}

func stringsField(raw map[string]any, key string) []string {
	items, ok := raw[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))

	for _, item := range items {
		if text, isString := item.(string); isString {
			out = append(out, text)
		}
	}

	return out
}
