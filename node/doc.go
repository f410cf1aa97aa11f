// Package node models the hierarchical content store the mapper reads from
// and writes to.
//
// A Node is identified by an absolute slash-separated path, carries a type tag
// and a set of named properties. Property values are kept in a canonical form
// (see Normalize) so that every store adapter round-trips them identically:
//
//   - string, int64, float64, bool, time.Time (UTC), []byte
//   - []any of the scalars above for multi-valued properties
//
// The package also defines the store-facing contracts consumed by the mapper:
// Resolver for reads, Writer for writes and TypeTagReader for type checks.
package node
