package node

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Resolver when nothing is stored at a path.
var ErrNotFound = errors.New("node not found")

// ErrConflict is returned by a Writer when another save of the same path
// committed between reading the stored version and writing the new one.
var ErrConflict = errors.New("concurrent save")

// Resolver fetches nodes by path.
type Resolver interface {
	// Fetch returns the node at path, or an error wrapping ErrNotFound.
	Fetch(ctx context.Context, path string) (*Node, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, path string) (*Node, error)

// Fetch calls f.
func (f ResolverFunc) Fetch(ctx context.Context, path string) (*Node, error) {
	return f(ctx, path)
}

// Writer persists nodes.
type Writer interface {
	// Save creates or replaces the node at n.Path and bumps n.Version. It
	// fails with an error wrapping ErrConflict when a concurrent save wins.
	Save(ctx context.Context, n *Node) error
	// Remove deletes the node at path, or returns an error wrapping ErrNotFound.
	Remove(ctx context.Context, path string) error
}

// Store is a complete content store.
type Store interface {
	Resolver
	Writer
	// List returns the paths of all nodes at or below prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// TypeTagReader returns the stored type identifier of a node.
type TypeTagReader interface {
	TypeTag(n *Node) string
}

// TypeTagReaderFunc adapts a function to the TypeTagReader interface.
type TypeTagReaderFunc func(n *Node) string

// TypeTag calls f.
func (f TypeTagReaderFunc) TypeTag(n *Node) string {
	return f(n)
}

// PrimaryTypeReader reads Node.TypeTag.
var PrimaryTypeReader TypeTagReader = TypeTagReaderFunc(func(n *Node) string {
	return n.TypeTag
})

// PropertyTagReader reads the type tag from a string property, such as a
// class-name discriminator. It falls back to Node.TypeTag when the property is
// missing or not a string.
func PropertyTagReader(name string) TypeTagReader {
	return TypeTagReaderFunc(func(n *Node) string {
		if v, ok := n.Get(name); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}

		return n.TypeTag
	})
}
