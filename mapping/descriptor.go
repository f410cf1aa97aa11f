package mapping

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

const (
	// IdentityPath is the store path of a field that mirrors the node's own path.
	IdentityPath = "@path"
	// UUIDProperty is the default store name of a uuid field.
	UUIDProperty = "jcr:uuid"
)

// FieldMapping ties one struct field to one store path.
type FieldMapping struct {
	Field     string    // Go struct field name
	Path      string    // store property name, or IdentityPath
	Name      string    // explicit store name; wins over Path
	Kind      FieldKind // KindAuto infers the kind from the field type
	Lazy      bool      // relation/collection must use a proxy handle
	Required  bool      // absence on read is an error
	OmitEmpty bool      // empty slices and pointers to zero values are not written either
	Converter string    // named converter from the ConverterRegistry
}

// Property maps field to a store property.
func Property(field, path string) FieldMapping {
	return FieldMapping{Field: field, Path: path, Kind: KindProperty}
}

// Identity maps field to the node's own path.
func Identity(field string) FieldMapping {
	return FieldMapping{Field: field, Path: IdentityPath, Kind: KindIdentity}
}

// UUID maps field to the jcr:uuid property.
func UUID(field string) FieldMapping {
	return FieldMapping{Field: field, Path: UUIDProperty, Kind: KindUUID}
}

// Relation maps a *T or *proxy.Ref[T] field to a property holding the target path.
func Relation(field, path string) FieldMapping {
	return FieldMapping{Field: field, Path: path, Kind: KindRelation}
}

// Collection maps a []*T or *proxy.List[T] field to a property holding target paths.
func Collection(field, path string) FieldMapping {
	return FieldMapping{Field: field, Path: path, Kind: KindCollection}
}

// StoreName returns the store-side name the field is read from and written to.
func (f FieldMapping) StoreName() string {
	switch {
	case f.Kind == KindIdentity || f.Path == IdentityPath:
		return IdentityPath
	case f.Name != "":
		return f.Name
	case f.Path != "":
		return f.Path
	case f.Kind == KindUUID:
		return UUIDProperty
	default:
		return f.Field
	}
}

// Binding is a FieldMapping resolved against its struct type at registration.
type Binding struct {
	Mapping   FieldMapping
	Kind      FieldKind    // never KindAuto
	Lazy      bool         // field holds a proxy handle
	StoreName string       // property name, or IdentityPath
	Index     []int        // reflect field index
	Type      reflect.Type // Go field type
	Target    reflect.Type // struct type of relation and collection targets
	Converter *Converter   // nil unless Mapping.Converter is set
}

// MappingDescriptor is the immutable mapping of one Go struct type.
type MappingDescriptor struct {
	Type    reflect.Type
	JcrType string

	fields   []FieldMapping
	bindings []Binding
	identity int
}

// Fields returns the field mappings exactly as registered.
func (d *MappingDescriptor) Fields() []FieldMapping {
	return slices.Clone(d.fields)
}

// Bindings returns the resolved fields in registration order.
func (d *MappingDescriptor) Bindings() []Binding {
	return slices.Clone(d.bindings)
}

// Binding returns the resolved mapping of a Go field.
func (d *MappingDescriptor) Binding(field string) (Binding, bool) {
	for _, b := range d.bindings {
		if b.Mapping.Field == field {
			return b, true
		}
	}

	return Binding{}, false
}

// Identity returns the identity binding.
func (d *MappingDescriptor) Identity() Binding {
	return d.bindings[d.identity]
}

func (d *MappingDescriptor) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)", d.Type, d.JcrType)

	for _, f := range d.bindings {
		fmt.Fprintf(&b, "\n  %-12s %-10s -> %s", f.Mapping.Field, strings.ToLower(f.Kind.String()), f.StoreName)

		if f.Lazy {
			b.WriteString(" lazy")
		}

		if f.Mapping.Required {
			b.WriteString(" required")
		}

		if f.Converter != nil {
			b.WriteString(" via " + f.Converter.Name)
		}
	}

	return b.String()
}
