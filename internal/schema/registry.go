// Package schema embeds the JSON Schema documents for the three form types
// and compiles them once at startup. Schemas are immutable inputs; nothing
// generates or mutates them at runtime.
package schema

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema identifiers.
const (
	Reporting     = "reporting"
	Investigation = "investigation"
	Enquiry       = "enquiry"
)

var files = map[string]string{
	Reporting:     "schemas/reporting.json",
	Investigation: "schemas/investigation.json",
	Enquiry:       "schemas/enquiry.json",
}

// Registry holds the compiled schemas.
type Registry struct {
	schemas map[string]*gojsonschema.Schema
}

// Load compiles every embedded schema. Any compile failure is fatal to
// startup, so a broken schema never reaches request handling.
func Load() (*Registry, error) {
	r := &Registry{schemas: make(map[string]*gojsonschema.Schema, len(files))}
	for id, path := range files {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %q: %w", id, err)
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %q: %w", id, err)
		}
		r.schemas[id] = compiled
	}
	return r, nil
}

// Get returns the compiled schema for id.
func (r *Registry) Get(id string) (*gojsonschema.Schema, error) {
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", id)
	}
	return s, nil
}
