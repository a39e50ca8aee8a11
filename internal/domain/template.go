package domain

import (
	"fmt"
	"time"
)

// FieldType is the closed set of types a template field may declare.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldInteger  FieldType = "integer"
	FieldFloat    FieldType = "float"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldDatetime FieldType = "datetime"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldAddress  FieldType = "address"
	FieldName     FieldType = "name"
	FieldCompany  FieldType = "company"
	FieldUUID     FieldType = "uuid"
	FieldChoice   FieldType = "choice"
)

var fieldTypes = map[FieldType]struct{}{
	FieldString: {}, FieldInteger: {}, FieldFloat: {}, FieldBoolean: {},
	FieldDate: {}, FieldDatetime: {}, FieldEmail: {}, FieldPhone: {},
	FieldAddress: {}, FieldName: {}, FieldCompany: {}, FieldUUID: {},
	FieldChoice: {},
}

// Valid reports whether the field type belongs to the closed set.
func (t FieldType) Valid() bool {
	_, ok := fieldTypes[t]
	return ok
}

// FieldSpec describes one field of a custom template. Order within the
// template's field list is significant: it fixes the output column order.
type FieldSpec struct {
	Name     string         `json:"name"`
	Type     FieldType      `json:"type"`
	Nullable bool           `json:"nullable,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// Template is a named custom schema for the custom data type. System
// templates materialize virtually from the generator registry and are never
// stored rows.
type Template struct {
	ID          string
	Name        string
	Description string
	Fields      []FieldSpec
	IsActive    bool
	IsSystem    bool
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the template shape before persistence.
func (t *Template) Validate() error {
	if t.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if len(t.Fields) == 0 {
		return &ValidationError{Field: "fields", Reason: "at least one field is required"}
	}
	seen := make(map[string]struct{}, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name == "" {
			return &ValidationError{Field: fmt.Sprintf("fields[%d].name", i), Reason: "field name is required"}
		}
		if _, dup := seen[f.Name]; dup {
			return &ValidationError{Field: fmt.Sprintf("fields[%d].name", i), Reason: fmt.Sprintf("duplicate field %q", f.Name)}
		}
		seen[f.Name] = struct{}{}
		if !f.Type.Valid() {
			return &ValidationError{Field: fmt.Sprintf("fields[%d].type", i), Reason: fmt.Sprintf("unknown field type %q", f.Type)}
		}
		if f.Type == FieldChoice {
			choices, ok := f.Options["choices"].([]any)
			if !ok || len(choices) == 0 {
				return &ValidationError{Field: fmt.Sprintf("fields[%d].options", i), Reason: "choice fields require a non-empty options.choices list"}
			}
		}
	}
	return nil
}
