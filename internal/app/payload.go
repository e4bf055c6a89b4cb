package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thedeuce2/ProWriter/internal/pw"
)

// DecodePayload turns an artifact payload file into JSON. Files named *.yaml
// or *.yml are read as YAML; anything else is used as is when it is valid
// JSON and read as YAML otherwise.
func DecodePayload(filename string, data []byte) (json.RawMessage, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".yaml" && ext != ".yml" && json.Valid(data) {
		return json.RawMessage(data), nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pw.ValidationError(err, "payload is neither JSON nor YAML")
	}
	out, err := json.Marshal(jsonCompatible(doc))
	if err != nil {
		return nil, pw.ValidationError(err, "payload cannot be represented as JSON")
	}
	return out, nil
}

// jsonCompatible converts YAML maps with non-string keys into string-keyed
// maps, recursively.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = jsonCompatible(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = jsonCompatible(item)
		}
		return t
	default:
		return v
	}
}
