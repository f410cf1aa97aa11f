package store

import (
	"fmt"
	"strings"

	"ocm-mapper/node"
)

// Prepare validates n before it is saved and returns a copy whose properties
// are in canonical form.
func Prepare(n *node.Node) (*node.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("save: nil node")
	}

	if err := node.ValidatePath(n.Path); err != nil {
		return nil, err
	}

	c := n.Clone()

	for name, v := range c.Properties {
		norm, err := node.Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		c.Properties[name] = norm
	}

	return c, nil
}

// Within reports whether path is prefix itself or lies below it.
func Within(prefix, path string) bool {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || prefix == node.Root {
		return true
	}

	return path == prefix || node.IsDescendant(prefix, path)
}
