package mapping

import "reflect"

// MappingFile represents the root of a YAML mapping definition file.
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// TypeMappings lists the mapped types.
	TypeMappings []TypeMapping `yaml:"mappings"`

	// Converters declares the named converters the mappings use.
	Converters []ConverterDef `yaml:"converters,omitempty"`
}

// TypeMapping maps one Go struct type to one node type tag.
type TypeMapping struct {
	// Type identifier (e.g., "testmodel.Detail" or full import path).
	Type string `yaml:"type"`

	// JcrType is the node type tag written and checked on nodes.
	JcrType string `yaml:"jcrType"`

	// Fields in declaration order.
	Fields []FieldDef `yaml:"fields,omitempty"`
}

// FieldDef is the YAML form of a FieldMapping.
//
// YAML formats supported:
//   - Field name only: "Title" (stored under the field name)
//   - Shorthand: {Title: "ocm:title"}
//   - Full form: {field: Title, path: "ocm:title", required: true}
type FieldDef struct {
	Field     string    `yaml:"field"`
	Path      string    `yaml:"path,omitempty"`
	Name      string    `yaml:"name,omitempty"`
	Kind      FieldKind `yaml:"kind,omitempty"`
	Lazy      bool      `yaml:"lazy,omitempty"`
	Required  bool      `yaml:"required,omitempty"`
	OmitEmpty bool      `yaml:"omitEmpty,omitempty"`
	Converter string    `yaml:"converter,omitempty"`
}

// Mapping converts the definition into a FieldMapping.
func (f FieldDef) Mapping() FieldMapping {
	return FieldMapping(f)
}

// ConverterDef names a converter registered in code.
type ConverterDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// fieldDefFrom is the inverse of FieldDef.Mapping.
func fieldDefFrom(fm FieldMapping) FieldDef {
	return FieldDef(fm)
}

// FileFromRegistry renders a registry as a mapping file. typeName maps each
// registered type to the name used in the file.
func FileFromRegistry(r *Registry, typeName func(reflect.Type) string) *MappingFile {
	mf := &MappingFile{Version: "1"}

	for _, d := range r.All() {
		tm := TypeMapping{
			Type:    typeName(d.Type),
			JcrType: d.JcrType,
		}

		for _, fm := range d.fields {
			tm.Fields = append(tm.Fields, fieldDefFrom(fm))
		}

		mf.TypeMappings = append(mf.TypeMappings, tm)
	}

	for _, name := range r.converters.Names() {
		mf.Converters = append(mf.Converters, ConverterDef{Name: name})
	}

	return mf
}
