package node

import (
	"maps"
	"slices"
	"time"
)

// Node is a unit of storage in the content store.
type Node struct {
	Path       string
	TypeTag    string
	Properties map[string]any
	// Version is assigned by the store and bumped on every save.
	Version int64
}

// New creates an empty node at path with the given type tag.
func New(path, typeTag string) *Node {
	return &Node{
		Path:       path,
		TypeTag:    typeTag,
		Properties: make(map[string]any),
	}
}

// Name returns the last segment of the node path.
func (n *Node) Name() string {
	return Name(n.Path)
}

// Get returns a property value.
func (n *Node) Get(name string) (any, bool) {
	if n.Properties == nil {
		return nil, false
	}

	v, ok := n.Properties[name]

	return v, ok
}

// Set stores a property value. A nil value removes the property.
func (n *Node) Set(name string, value any) {
	if value == nil {
		delete(n.Properties, name)
		return
	}

	if n.Properties == nil {
		n.Properties = make(map[string]any)
	}

	n.Properties[name] = value
}

// PropertyNames returns the property names in sorted order.
func (n *Node) PropertyNames() []string {
	return slices.Sorted(maps.Keys(n.Properties))
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	c := &Node{
		Path:       n.Path,
		TypeTag:    n.TypeTag,
		Version:    n.Version,
		Properties: make(map[string]any, len(n.Properties)),
	}

	for k, v := range n.Properties {
		c.Properties[k] = cloneValue(v)
	}

	return c
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case []byte:
		return slices.Clone(vv)
	case []any:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = cloneValue(vv[i])
		}

		return out
	case time.Time:
		return vv
	default:
		return v
	}
}
