// Package validation checks submitted form documents against their JSON
// Schema and, when the structural pass succeeds, against the cross-field
// business rules of the form type. All violations are collected into one
// error so the caller can surface every problem at once.
package validation

import (
	"fmt"
	"strings"

	"github.com/ohse-platform/incident-backend/internal/schema"
	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaViolationError carries the complete set of violations found in a
// single validation pass. The submission is never partially applied.
type SchemaViolationError struct {
	SchemaID string
	Fields   []FieldError
}

func (e *SchemaViolationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s form validation failed: %s", e.SchemaID, strings.Join(msgs, "; "))
}

type Validator struct {
	registry *schema.Registry
}

func New(registry *schema.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate runs the structural pass for schemaID over the raw JSON
// document, then the domain rules layered on top. Domain rules only run
// when the document is structurally sound, so they can index into it
// without defensive nil checks at every step.
func (v *Validator) Validate(schemaID string, document []byte) error {
	compiled, err := v.registry.Get(schemaID)
	if err != nil {
		return err
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &SchemaViolationError{
			SchemaID: schemaID,
			Fields:   []FieldError{{Field: "(document)", Message: "not a valid JSON document"}},
		}
	}
	if !result.Valid() {
		fields := make([]FieldError, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			fields = append(fields, FieldError{Field: re.Field(), Message: re.Description()})
		}
		return &SchemaViolationError{SchemaID: schemaID, Fields: fields}
	}

	var fields []FieldError
	switch schemaID {
	case schema.Investigation:
		fields = investigationRules(document)
	case schema.Reporting:
		fields = reportingRules(document)
	}
	if len(fields) > 0 {
		return &SchemaViolationError{SchemaID: schemaID, Fields: fields}
	}
	return nil
}
