package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// TextField is one string property of a structured output schema.
type TextField struct {
	Name        string
	Description string
	Required    bool
	NonEmpty    bool
}

// Schema describes the JSON object a backend must return. It is sent to the
// backend with the prompt and enforced on the response.
type Schema struct {
	Name        string
	Description string
	Fields      []TextField

	compiled *gojsonschema.Schema
}

// EnhancementSchema is the output contract of description enhancement.
var EnhancementSchema = MustSchema(
	"enhancement_result",
	"An improved rental property description.",
	TextField{
		Name:        "enhancedDescription",
		Description: "The AI-enhanced property description.",
		Required:    true,
		NonEmpty:    true,
	},
)

// NewSchema builds and compiles an object schema from fields.
func NewSchema(name, description string, fields ...TextField) (*Schema, error) {
	s := &Schema{Name: name, Description: description, Fields: fields}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.Document()))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	s.compiled = compiled
	return s, nil
}

// MustSchema is NewSchema that panics on error, for package-level schemas.
func MustSchema(name, description string, fields ...TextField) *Schema {
	s, err := NewSchema(name, description, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Document returns the schema as a JSON Schema object.
func (s *Schema) Document() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		prop := map[string]any{
			"type":        "string",
			"description": f.Description,
		}
		if f.NonEmpty {
			prop["minLength"] = 1
			prop["pattern"] = `\S`
		}
		properties[f.Name] = prop
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if required := s.RequiredFields(); len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// RequiredFields lists the names of required fields in declaration order.
func (s *Schema) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// MarshalJSON lets a Schema be handed to clients that take a json.Marshaler.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

// Validate checks doc against the schema. Violations wrap ErrSchemaMismatch.
func (s *Schema) Validate(doc map[string]any) error {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(errs, "; "))
	}
	return nil
}
