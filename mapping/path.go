package mapping

import (
	"strings"
	"unicode"

	"ocm-mapper/node"
	"ocm-mapper/ocmerr"
)

// PropertyName is a store name with an optional namespace prefix.
type PropertyName struct {
	Prefix string // e.g. "ocm"; empty when unqualified
	Local  string // e.g. "field"
}

// String returns the name in "prefix:local" form.
func (p PropertyName) String() string {
	if p.Prefix == "" {
		return p.Local
	}

	return p.Prefix + ":" + p.Local
}

// ParsePropertyName parses "local" or "prefix:local".
func ParsePropertyName(s string) (PropertyName, error) {
	invalid := func(msg string) error {
		return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(s), ocmerr.Message(msg))
	}

	if s == "" {
		return PropertyName{}, invalid("empty name")
	}

	var name PropertyName

	prefix, local, qualified := strings.Cut(s, ":")
	if qualified {
		if !isValidPrefix(prefix) {
			return PropertyName{}, invalid("invalid namespace prefix")
		}

		name.Prefix = prefix
	} else {
		local = prefix
	}

	if local == "" {
		return PropertyName{}, invalid("empty local name")
	}

	if strings.ContainsAny(local, ":/[]*|") {
		return PropertyName{}, invalid("local name contains a reserved character")
	}

	if strings.IndexFunc(local, unicode.IsSpace) >= 0 {
		return PropertyName{}, invalid("local name contains whitespace")
	}

	if local == "." || local == ".." {
		return PropertyName{}, invalid("relative name")
	}

	name.Local = local

	return name, nil
}

// ParsePath validates an absolute store path and returns its names.
func ParsePath(p string) ([]PropertyName, error) {
	if err := node.ValidatePath(p); err != nil {
		return nil, err
	}

	segments := node.Segments(p)

	names := make([]PropertyName, 0, len(segments))
	for _, seg := range segments {
		name, err := ParsePropertyName(seg)
		if err != nil {
			return nil, ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(p), ocmerr.Cause(err))
		}

		names = append(names, name)
	}

	return names, nil
}

// isValidPrefix checks a namespace prefix: a letter or underscore followed by
// letters, digits, '_', '-' or '.'.
func isValidPrefix(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return false
			}

			continue
		}

		if !isLetter(r) && !isDigit(r) && r != '_' && r != '-' && r != '.' {
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
