// Package mapping holds the mapping descriptors that tie Go struct types to
// store nodes, the registry they live in, and the YAML files they can be
// loaded from.
//
// A registry is built once at startup, either in code with Register or from
// mapping files with Build, and is read-only afterwards. Concurrent readers
// need no locking.
//
// # Field kinds
//
//   - property: a scalar or multi-valued property
//   - identity: mirrors the node's own path; written as "@path"
//   - uuid: mirrors jcr:uuid; a random UUID is generated on write when empty
//   - relation: the property holds the target node's path. A *proxy.Ref[T]
//     field is lazy, a *T field is loaded eagerly
//   - collection: the property holds target paths. A *proxy.List[T] field is
//     lazy, a []*T field is loaded eagerly
//
// Kinds left empty are inferred from the field's Go type.
//
// # Schema Overview
//
//	version: "1"
//	mappings:
//	  - type: testmodel.Detail
//	    jcrType: ocm:detail
//	    fields:
//	      - Path: "@path"          # shorthand: field -> store path
//	      - field: Field
//	        path: ocm:field
//	        required: true
//	  - type: testmodel.Person
//	    jcrType: ocm:person
//	    fields:
//	      - Path: "@path"
//	      - field: Cents
//	        path: ocm:cents
//	        converter: AmountCents
//	converters:
//	  - name: AmountCents
//
// Converter functions cannot be expressed in YAML; a mapping file only names
// them and Build looks them up in a ConverterRegistry filled in code.
//
// # Path Syntax
//
// Store paths are absolute, '/'-separated and made of names. A name may carry
// a namespace prefix ("ocm:field"). Names cannot contain '/', '[', ']', '*',
// '|' or whitespace.
package mapping
