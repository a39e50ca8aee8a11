package domain

import "testing"

func TestTemplateValidate(t *testing.T) {
	valid := func() *Template {
		return &Template{
			Name: "orders",
			Fields: []FieldSpec{
				{Name: "id", Type: FieldUUID},
				{Name: "status", Type: FieldChoice, Options: map[string]any{"choices": []any{"open", "closed"}}},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Template)
		wantErr bool
	}{
		{"valid template", func(*Template) {}, false},
		{"missing name", func(tpl *Template) { tpl.Name = "" }, true},
		{"no fields", func(tpl *Template) { tpl.Fields = nil }, true},
		{"unnamed field", func(tpl *Template) { tpl.Fields[0].Name = "" }, true},
		{"duplicate field names", func(tpl *Template) { tpl.Fields[1].Name = "id" }, true},
		{"unknown field type", func(tpl *Template) { tpl.Fields[0].Type = "blob" }, true},
		{"choice without options", func(tpl *Template) { tpl.Fields[1].Options = nil }, true},
		{"choice with empty choices", func(tpl *Template) {
			tpl.Fields[1].Options = map[string]any{"choices": []any{}}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := valid()
			tt.mutate(tpl)
			err := tpl.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}
