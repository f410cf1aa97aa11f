package mapping

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// fieldDefFull has FieldDef's fields without its YAML methods.
type fieldDefFull FieldDef

// UnmarshalYAML implements custom YAML unmarshaling for FieldDef.
// Accepts:
//   - Field name only: "Title"
//   - Shorthand map: {Title: "ocm:title"}
//   - Full form with a "field" key
func (f *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		// Field name only: "Title"
		var name string

		err := node.Decode(&name)
		if err != nil {
			return err
		}

		if name == "" {
			return errors.New("empty field name")
		}

		*f = FieldDef{Field: name}

		return nil

	case yaml.MappingNode:
		if isShorthand(node) {
			return f.decodeShorthand(node)
		}

		var full fieldDefFull

		err := node.Decode(&full)
		if err != nil {
			return err
		}

		if full.Field == "" {
			return fmt.Errorf("line %d: field mapping must specify field", node.Line)
		}

		*f = FieldDef(full)

		return nil

	default:
		return fmt.Errorf("expected string or map, got %v", node.Kind)
	}
}

// isShorthand reports whether node is a single {Field: path} pair rather than
// the full form, which always has a "field" key.
func isShorthand(node *yaml.Node) bool {
	return len(node.Content) == 2 && node.Content[0].Value != "field"
}

// decodeShorthand parses a YAML mapping node like {Title: "ocm:title"}.
func (f *FieldDef) decodeShorthand(node *yaml.Node) error {
	var field, path string

	err := node.Content[0].Decode(&field)
	if err != nil {
		return fmt.Errorf("invalid field name: %w", err)
	}

	err = node.Content[1].Decode(&path)
	if err != nil {
		return fmt.Errorf("field %s: invalid path: %w", field, err)
	}

	*f = FieldDef{Field: field, Path: path}

	return nil
}

// MarshalYAML implements custom YAML marshaling for FieldDef.
// Outputs the shortest form that round-trips.
func (f FieldDef) MarshalYAML() (any, error) {
	rest := f
	rest.Field, rest.Path = "", ""

	if rest != (FieldDef{}) {
		return fieldDefFull(f), nil
	}

	if f.Path == "" {
		return f.Field, nil
	}

	return map[string]string{f.Field: f.Path}, nil
}
