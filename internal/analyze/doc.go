// Package analyze loads Go packages and extracts the struct types that
// mapping files refer to.
//
// It uses golang.org/x/tools/go/packages with go/types to build an in-memory
// type graph, so mapping files can be checked against source code without
// compiling it into the checker.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/array/external)
//   - FieldInfo: describes field name, type, tags, and embedding
package analyze
