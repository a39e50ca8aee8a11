// Package generator defines the pluggable record-generation contract and the
// registry the API and workers resolve data types through.
package generator

import (
	"fmt"
	"sort"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Field describes one output column for capability discovery.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Example     any    `json:"example"`
}

// Record is a single generated row. Column order is always taken from the
// generator's Fields(), never from map iteration.
type Record map[string]any

// Generator produces one fully-formed record per call for a specific data
// type. Implementations are deterministic when built from a seeded faker.
type Generator interface {
	Name() string
	Description() string
	Fields() []Field
	Generate() (Record, error)
}

// Info is the discovery view of a registered generator.
type Info struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Factory builds a generator around the faker instance that owns its
// randomness.
type Factory func(fake *gofakeit.Faker) Generator

// Registry maps data-type names to generator factories. It is constructed
// once at process start and passed by reference; there is no package-level
// singleton.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds a registry with the built-in data types registered. The
// locale fixes the country and currency the built-ins stamp onto records.
func NewRegistry(locale language.Tag) *Registry {
	country, cur := localeShape(locale)
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("user", func(f *gofakeit.Faker) Generator { return NewUser(f, country) })
	r.Register("ecommerce", func(f *gofakeit.Faker) Generator { return NewEcommerce(f, cur) })
	r.Register("company", func(f *gofakeit.Faker) Generator { return NewCompany(f, country) })
	return r
}

// localeShape resolves the locale's region to a country display name and an
// ISO 4217 currency code, defaulting to United States / USD when the tag
// carries no usable region.
func localeShape(locale language.Tag) (country, cur string) {
	country, cur = "United States", "USD"
	region, conf := locale.Region()
	if conf == language.No {
		return country, cur
	}
	if name := display.English.Regions().Name(region); name != "" {
		country = name
	}
	if unit, ok := currency.FromRegion(region); ok {
		cur = unit.String()
	}
	return country, cur
}

// Register adds a factory under the given data-type name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Has reports whether a data type is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered data-type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a generator for the data type. A non-zero seed makes output
// deterministic; seed zero leaves the faker randomly seeded.
func (r *Registry) New(name string, seed uint64) (Generator, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown data type %q, supported: %v", name, r.Names())
	}
	return factory(gofakeit.New(seed)), nil
}

// Catalog returns discovery info for every registered generator.
func (r *Registry) Catalog() []Info {
	infos := make([]Info, 0, len(r.factories))
	for _, name := range r.Names() {
		g, err := r.New(name, 0)
		if err != nil {
			continue
		}
		infos = append(infos, Info{Name: g.Name(), Description: g.Description(), Fields: g.Fields()})
	}
	return infos
}

// Preview generates up to cap records synchronously, bypassing the job
// machinery entirely. Requested counts above the cap are clamped, never an
// error.
func Preview(g Generator, count, cap int) ([]Record, error) {
	if cap > 0 && count > cap {
		count = cap
	}
	if count < 1 {
		count = 1
	}
	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		rec, err := g.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate preview record %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
