package testmodel

import (
	"reflect"

	"ocm-mapper/mapping"
)

// JCR type tags of the test model.
const (
	MainType   = "ocm:main"
	DetailType = "ocm:detail"
	PersonType = "ocm:person"
)

// Converters returns the converters the test mappings use.
func Converters() *mapping.ConverterRegistry {
	c := mapping.NewConverterRegistry()
	c.MustAdd("cents", AmountFromCents, AmountToCents)

	return c
}

// Registry returns the test model registered in code. It matches
// testdata/mappings.yaml.
func Registry() *mapping.Registry {
	r := mapping.NewRegistry(Converters())

	r.MustRegister(reflect.TypeFor[Main](), MainType,
		mapping.Identity("Path"),
		mapping.Property("Title", "ocm:title"),
		mapping.Property("Created", "ocm:created"),
		mapping.Property("Tags", "ocm:tags"),
		mapping.Property("Priority", "ocm:priority"),
		mapping.FieldMapping{Field: "Detail", Path: "ocm:detail", Kind: mapping.KindRelation, Lazy: true},
		mapping.FieldMapping{Field: "Extras", Path: "ocm:extras", Kind: mapping.KindCollection, Lazy: true},
		mapping.Relation("Owner", "ocm:owner"),
	)

	r.MustRegister(reflect.TypeFor[Detail](), DetailType,
		mapping.Identity("Path"),
		mapping.Property("Field", "ocm:field"),
	)

	r.MustRegister(reflect.TypeFor[Person](), PersonType,
		mapping.Identity("Path"),
		mapping.UUID("ID"),
		mapping.FieldMapping{Field: "Name", Path: "ocm:name", Kind: mapping.KindProperty, Required: true},
		mapping.FieldMapping{Field: "Age", Path: "ocm:age", Kind: mapping.KindProperty, OmitEmpty: true},
		mapping.Property("Status", "ocm:status"),
		mapping.Property("Timeout", "ocm:timeout"),
		mapping.Collection("Friends", "ocm:friends"),
		mapping.Property("Avatar", "ocm:avatar"),
		mapping.FieldMapping{Field: "Cents", Path: "ocm:cents", Converter: "cents"},
	)

	if err := r.Verify(); err != nil {
		panic(err)
	}

	return r
}

// Types indexes the test model types for mapping.Build.
func Types() map[string]reflect.Type {
	return mapping.TypesOf(Main{}, Detail{}, Person{})
}
