package generator

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
)

// Custom interprets a user-defined template field by field. The template is
// validated before it reaches this point; unknown field types fail Generate
// rather than being silently skipped.
type Custom struct {
	fake   *gofakeit.Faker
	tpl    *domain.Template
	anchor time.Time
}

// FromTemplate builds a generator for the custom data type. Seed semantics
// match Registry.New: non-zero is deterministic, zero is random.
func FromTemplate(tpl *domain.Template, seed uint64) *Custom {
	return &Custom{
		fake:   gofakeit.New(seed),
		tpl:    tpl,
		anchor: time.Now().UTC().Truncate(24 * time.Hour),
	}
}

func (g *Custom) Name() string { return g.tpl.Name }

func (g *Custom) Description() string {
	if g.tpl.Description != "" {
		return g.tpl.Description
	}
	return "Custom template-defined data"
}

func (g *Custom) Fields() []Field {
	fields := make([]Field, 0, len(g.tpl.Fields))
	for _, f := range g.tpl.Fields {
		fields = append(fields, Field{
			Name:        f.Name,
			Type:        string(f.Type),
			Description: fmt.Sprintf("Template field of type %s", f.Type),
		})
	}
	return fields
}

func (g *Custom) Generate() (Record, error) {
	rec := make(Record, len(g.tpl.Fields))
	for _, spec := range g.tpl.Fields {
		// Roughly one null in ten for nullable fields.
		if spec.Nullable && g.fake.Number(1, 10) == 1 {
			rec[spec.Name] = nil
			continue
		}
		v, err := g.value(spec)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		rec[spec.Name] = v
	}
	return rec, nil
}

func (g *Custom) value(spec domain.FieldSpec) (any, error) {
	switch spec.Type {
	case domain.FieldString:
		return g.fake.Word(), nil
	case domain.FieldInteger:
		lo, hi := intOption(spec.Options, "min", 0), intOption(spec.Options, "max", 1000)
		if hi < lo {
			hi = lo
		}
		return g.fake.Number(lo, hi), nil
	case domain.FieldFloat:
		lo, hi := floatOption(spec.Options, "min", 0), floatOption(spec.Options, "max", 1000)
		if hi < lo {
			hi = lo
		}
		return round2(g.fake.Float64Range(lo, hi)), nil
	case domain.FieldBoolean:
		return g.fake.Bool(), nil
	case domain.FieldDate:
		return g.fake.DateRange(g.anchor.AddDate(-10, 0, 0), g.anchor).Format("2006-01-02"), nil
	case domain.FieldDatetime:
		return g.fake.DateRange(g.anchor.AddDate(-10, 0, 0), g.anchor), nil
	case domain.FieldEmail:
		return g.fake.Email(), nil
	case domain.FieldPhone:
		return g.fake.PhoneFormatted(), nil
	case domain.FieldAddress:
		return fmt.Sprintf("%s, %s, %s %s", g.fake.Street(), g.fake.City(), g.fake.StateAbr(), g.fake.Zip()), nil
	case domain.FieldName:
		return g.fake.Name(), nil
	case domain.FieldCompany:
		return g.fake.Company(), nil
	case domain.FieldUUID:
		return g.fake.UUID(), nil
	case domain.FieldChoice:
		choices, ok := spec.Options["choices"].([]any)
		if !ok || len(choices) == 0 {
			return nil, fmt.Errorf("choice field has no choices")
		}
		return choices[g.fake.Number(0, len(choices)-1)], nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", spec.Type)
	}
}

func intOption(opts map[string]any, key string, fallback int) int {
	if opts == nil {
		return fallback
	}
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func floatOption(opts map[string]any, key string, fallback float64) float64 {
	if opts == nil {
		return fallback
	}
	switch v := opts[key].(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	return fallback
}
