// Package mapper converts between mapped Go structs and store nodes.
//
// A Mapper reads descriptors from a mapping.Registry and nodes from a
// node.Resolver:
//   - ToObject builds a *T from a node, checking the node's type tag
//   - ToNode builds a node from a mapped object without touching the store
//   - Load fetches a path and converts it; Mapper is also the proxy.Loader
//     every lazy handle it creates is bound to
//
// Lazy relation and collection fields receive Unresolved proxy handles. Eager
// ones are loaded while the owning object is read; cycles between eager
// relations resolve to the same object within one read.
package mapper
