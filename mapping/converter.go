package mapping

import (
	"reflect"
	"slices"

	"ocm-mapper/caster"
	"ocm-mapper/ocmerr"
)

// Converter is a named pair of functions translating between a field type
// and the type stored in the node.
type Converter struct {
	Name  string
	Read  caster.Caster // store value -> field value
	Write caster.Caster // field value -> store value
}

// FieldType returns the Go field type the converter produces.
func (c *Converter) FieldType() reflect.Type {
	return c.Read.Dst
}

// StoreType returns the Go type the converter reads from the store.
func (c *Converter) StoreType() reflect.Type {
	return c.Read.Src
}

// ConverterRegistry holds validated converters and provides lookup.
type ConverterRegistry struct {
	converters map[string]*Converter
}

// NewConverterRegistry creates a new empty converter registry.
func NewConverterRegistry() *ConverterRegistry {
	return &ConverterRegistry{
		converters: make(map[string]*Converter),
	}
}

// Add validates and registers a converter. read must have the shape
// func(S) F and write func(F) S, each optionally returning a bool and/or an
// error, where S is a storable type.
func (r *ConverterRegistry) Add(name string, read, write any) error {
	fail := func(format string, args ...any) error {
		return ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Message("converter %q: "+format, append([]any{name}, args...)...))
	}

	if name == "" {
		return fail("empty name")
	}

	if _, exists := r.converters[name]; exists {
		return ocmerr.New(ocmerr.KindDuplicateMapping, ocmerr.Message("converter %q already registered", name))
	}

	rc, err := caster.Parse(read)
	if err != nil {
		return ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Message("converter %q: read", name), ocmerr.Cause(err))
	}

	wc, err := caster.Parse(write)
	if err != nil {
		return ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Message("converter %q: write", name), ocmerr.Cause(err))
	}

	switch {
	case rc.Dst != wc.Src:
		return fail("read produces %s but write takes %s", rc.Dst, wc.Src)
	case rc.Src != wc.Dst:
		return fail("read takes %s but write produces %s", rc.Src, wc.Dst)
	case !storable(rc.Src):
		return fail("%s cannot be stored as a property", rc.Src)
	}

	r.converters[name] = &Converter{Name: name, Read: rc, Write: wc}

	return nil
}

// MustAdd is like Add but panics on error.
func (r *ConverterRegistry) MustAdd(name string, read, write any) {
	if err := r.Add(name, read, write); err != nil {
		panic(err)
	}
}

// Get returns a converter by name.
func (r *ConverterRegistry) Get(name string) (*Converter, bool) {
	c, ok := r.converters[name]
	return c, ok
}

// Has returns true if a converter with the given name exists.
func (r *ConverterRegistry) Has(name string) bool {
	_, exists := r.converters[name]
	return exists
}

// Names returns all converter names, sorted.
func (r *ConverterRegistry) Names() []string {
	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
