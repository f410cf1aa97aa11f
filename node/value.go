package node

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"
)

//go:generate go tool stringer -type=PropertyType -trimprefix=Type -output=property_type_string.go

// PropertyType is the stored type of a canonical property value.
type PropertyType int

const (
	_ PropertyType = iota

	TypeString
	TypeLong
	TypeDouble
	TypeBoolean
	TypeDate
	TypeBinary

	// TypeTotal is a constant that represents the total number of property types defined
	TypeTotal = int(iota)
)

// ParsePropertyType is the inverse of PropertyType.String.
func ParsePropertyType(s string) (PropertyType, error) {
	for t := TypeString; int(t) < TypeTotal; t++ {
		if t.String() == s {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown property type %q", s)
}

// ErrUnsupportedValue is returned by Normalize for values with no canonical form.
var ErrUnsupportedValue = errors.New("unsupported property value")

// TypeOf returns the property type of a canonical scalar, or zero.
func TypeOf(v any) PropertyType {
	switch v.(type) {
	case string:
		return TypeString
	case int64:
		return TypeLong
	case float64:
		return TypeDouble
	case bool:
		return TypeBoolean
	case time.Time:
		return TypeDate
	case []byte:
		return TypeBinary
	default:
		return 0
	}
}

// IsMultiple reports whether v is a canonical multi-valued property.
func IsMultiple(v any) bool {
	_, ok := v.([]any)
	return ok
}

// Normalize converts v into its canonical property form. Integers widen to
// int64, floats to float64, times move to UTC and any slice other than []byte
// becomes a []any of canonical scalars whose elements share one type.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedValue)
	}

	if s, ok := normalizeScalar(v); ok {
		return s, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}

	out := make([]any, rv.Len())

	var elemType PropertyType

	for i := range rv.Len() {
		ev := rv.Index(i).Interface()

		s, ok := normalizeScalar(ev)
		if !ok {
			return nil, fmt.Errorf("%w: element %d of %T is %T", ErrUnsupportedValue, i, v, ev)
		}

		t := TypeOf(s)
		if i == 0 {
			elemType = t
		} else if t != elemType {
			return nil, fmt.Errorf("%w: mixed element types %s and %s", ErrUnsupportedValue, elemType, t)
		}

		out[i] = s
	}

	return out, nil
}

func normalizeScalar(v any) (any, bool) {
	switch vv := v.(type) {
	case string:
		return vv, true
	case bool:
		return vv, true
	case int:
		return int64(vv), true
	case int8:
		return int64(vv), true
	case int16:
		return int64(vv), true
	case int32:
		return int64(vv), true
	case int64:
		return vv, true
	case uint:
		return uintToLong(uint64(vv))
	case uint8:
		return int64(vv), true
	case uint16:
		return int64(vv), true
	case uint32:
		return int64(vv), true
	case uint64:
		return uintToLong(vv)
	case float32:
		return float64(vv), true
	case float64:
		return vv, true
	case time.Time:
		return vv.UTC(), true
	case []byte:
		return vv, true
	default:
		return nil, false
	}
}

func uintToLong(u uint64) (any, bool) {
	if u > math.MaxInt64 {
		return nil, false
	}

	return int64(u), true
}
