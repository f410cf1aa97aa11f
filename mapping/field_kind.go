package mapping

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=FieldKind -trimprefix=Kind -output=field_kind_string.go

// FieldKind says how a struct field is stored.
type FieldKind int

const (
	KindAuto FieldKind = iota // inferred from the Go field type
	KindProperty
	KindIdentity
	KindUUID
	KindRelation
	KindCollection

	// KindTotal is a constant that represents the total number of field kinds defined
	KindTotal = int(iota)
)

// ParseFieldKind parses a kind name case-insensitively. The empty string is KindAuto.
func ParseFieldKind(s string) (FieldKind, error) {
	if s == "" {
		return KindAuto, nil
	}

	for k := KindAuto; int(k) < KindTotal; k++ {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown field kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k FieldKind) MarshalText() ([]byte, error) {
	if k == KindAuto {
		return nil, nil
	}

	return []byte(strings.ToLower(k.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FieldKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// IsReference reports whether the kind stores paths of other nodes.
func (k FieldKind) IsReference() bool {
	return k == KindRelation || k == KindCollection
}
