package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildConfigJSONSchema returns the JSON-Schema (draft 2020-12 subset) for
// the optional config file, as a generic map so it stays easy to extend.
func BuildConfigJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"log_level": map[string]any{
				"type": "string",
				"enum": []string{"debug", "info", "warn", "error"},
			},
			"http_addr": map[string]any{"type": "string", "minLength": 1},
			"engine": map[string]any{
				"type": "string",
				"enum": []string{"tesseract", "gosseract"},
			},
			"tesseract_bin": map[string]any{"type": "string"},
			"languages": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 2},
				"minItems": 1,
			},
			"tessdata_dir": map[string]any{"type": "string"},
			"psm":          map[string]any{"type": "integer", "minimum": 0, "maximum": 13},
			"oem":          map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
			"history_dsn":  map[string]any{"type": "string"},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
