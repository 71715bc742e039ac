// Package srs parses the requirements breakdown into functional modules.
package srs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jorge-barreto/softcopy/internal/fence"
	"github.com/xeipuuv/gojsonschema"
)

// Module is one functional module of the software being documented.
type Module struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

var ErrParse = errors.New("requirements breakdown could not be parsed")

// ParseError is a fatal failure to read the requirements breakdown.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parsing %s: %s", e.Path, e.Reason)
	}
	return "parsing requirements: " + e.Reason
}

func (e *ParseError) Unwrap() error { return ErrParse }

const moduleSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["name"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "features": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(moduleSchema)

// Parse reads a module list from text. It tries the text with fences
// stripped, then an embedded ```json block, then an embedded [{...}] array.
// The first candidate that decodes as JSON is checked against the schema.
func Parse(text string) ([]Module, error) {
	var doc any
	var decoded bool
	for _, candidate := range candidates(text) {
		if err := json.Unmarshal([]byte(candidate), &doc); err == nil {
			decoded = true
			break
		}
	}
	if !decoded {
		return nil, &ParseError{Reason: "no JSON module list found"}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("schema validation error: %v", err)}
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, &ParseError{Reason: "invalid module list: " + strings.Join(errs, "; ")}
	}

	// doc already matched the schema, re-encode to get typed modules
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	var modules []Module
	if err := json.Unmarshal(raw, &modules); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	for i := range modules {
		modules[i].Name = strings.TrimSpace(modules[i].Name)
		if modules[i].Features == nil {
			modules[i].Features = []string{}
		}
	}
	return modules, nil
}

func candidates(text string) []string {
	out := []string{fence.Strip(text)}
	if block, ok := fence.Extract(text, "json"); ok {
		out = append(out, block)
	}
	if arr, ok := fence.FindJSONArray(text); ok {
		out = append(out, arr)
	}
	return out
}

// Encode renders modules as indented JSON for srs.json.
func Encode(modules []Module) ([]byte, error) {
	return json.MarshalIndent(modules, "", "  ")
}
