package docmerge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alnah/go-docmerge/internal/fileutil"
	"github.com/alnah/go-docmerge/internal/yamlutil"
)

// Rule type names accepted in mapping documents. Any other type reads a column.
const (
	ruleTypeCustom   = "custom"
	ruleTypeConstant = "constant"
)

// maxMappingSize bounds mapping documents. Mappings with many constant
// blocks of text can exceed the YAML default.
const maxMappingSize = 4 << 20

// LoadMapping reads a mapping document. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- mapping path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}
	if fileutil.HasExtension(path, ".yaml", ".yml") {
		return ParseMappingYAML(data)
	}
	return ParseMapping(data)
}

// ParseMapping parses a JSON mapping document: an object whose values are
// either a column name (legacy form) or {"type": "csv"|"custom", "value": ...}.
func ParseMapping(data []byte) (Mapping, error) {
	if len(data) > maxMappingSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidMapping, len(data), maxMappingSize)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	return normalizeMapping(raw)
}

// ParseMappingYAML parses the YAML form of a mapping document.
func ParseMappingYAML(data []byte) (Mapping, error) {
	var raw map[string]any
	if err := yamlutil.Decode(data, &raw, yamlutil.MaxSize(maxMappingSize)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	return normalizeMapping(raw)
}

// normalizeMapping turns the decoded document into rules. Only the structured
// form with type custom or constant yields a Constant rule.
func normalizeMapping(raw map[string]any) (Mapping, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyMapping
	}

	m := make(Mapping, len(raw))
	for name, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok {
			m[name] = CSV(stringify(v))
			continue
		}
		value := stringify(obj["value"])
		switch stringify(obj["type"]) {
		case ruleTypeCustom, ruleTypeConstant:
			m[name] = Constant(value)
		default:
			m[name] = CSV(value)
		}
	}
	return m, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	}
	return fmt.Sprint(v)
}
