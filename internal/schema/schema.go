// Package schema validates host-function keyword arguments against a JSON
// Schema document (santhosh-tekuri/jsonschema/v5, Draft 2020-12), compiled
// once at registration and reused across calls.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }

// Schema is a compiled JSON Schema ready to validate argument objects.
type Schema struct {
	compiled *jsonschema.Schema
}

// Compile parses doc (a JSON Schema document, Draft 2020-12) and returns a
// ready-to-use Schema.
func Compile(doc map[string]any) (*Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal document: %w", err)
	}

	const resourceURL = "pyscript://host-function-args.json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceURL, stringsReader(string(raw))); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks kwargs (already converted to plain Go values via
// object-package ToGo conversion) against the compiled schema.
func (s *Schema) Validate(kwargs map[string]any) error {
	if err := s.compiled.Validate(kwargs); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%s", ve.Error())
		}
		return err
	}
	return nil
}
