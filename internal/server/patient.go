package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/healthlens/healthlens/internal/common"
	"github.com/healthlens/healthlens/internal/prompt"
)

// patientSchema accepts the free-form demographic fields. Presence and type
// checks only; values are never interpreted here.
var patientSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"name":       map[string]any{"type": "string"},
		"age":        map[string]any{"type": []any{"string", "number", "integer"}},
		"gender":     map[string]any{"type": "string"},
		"conditions": map[string]any{"type": "string"},
	},
}

// ParsePatientContext validates and decodes the optional userInfo form field.
// Empty input yields nil: patient context is optional end to end.
func ParsePatientContext(raw []byte) (*prompt.PatientContext, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if err := validateJSONAgainstSchema(patientSchema, raw); err != nil {
		return nil, fmt.Errorf("%w: userInfo: %v", common.ErrInvalidInput, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: userInfo: %v", common.ErrInvalidInput, err)
	}

	ctx := &prompt.PatientContext{
		Name:       stringField(fields, "name"),
		Age:        stringField(fields, "age"),
		Gender:     stringField(fields, "gender"),
		Conditions: stringField(fields, "conditions"),
	}
	if *ctx == (prompt.PatientContext{}) {
		return nil, nil
	}
	return ctx, nil
}

// stringField renders a field verbatim; numeric ages arrive as JSON numbers
// and are carried through as their literal text.
func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// validateJSONAgainstSchema validates data against schemaMap.
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
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
