package primitive

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"ocm-mapper/options"
)

var (
	ErrUnsupported  = errors.New("unsupported conversion")
	ErrNotAllowed   = errors.New("conversion category not allowed")
	ErrLossy        = errors.New("value does not survive conversion")
	ErrInvalidValue = errors.New("invalid value")
)

type validator interface {
	IsValid() bool
}

var validatorType = reflect.TypeFor[validator]()

// Convert assigns a canonical store value to dst, converting it to dst's type
// within the allowed categories. A nil src zeroes dst.
func Convert(src any, dst reflect.Value, allowed options.CategoryEnum) error {
	if !dst.CanSet() {
		return fmt.Errorf("%w: destination %s is not settable", ErrUnsupported, dst.Type())
	}

	if src == nil {
		dst.SetZero()
		return nil
	}

	dt := dst.Type()

	switch {
	case dt.Kind() == reflect.Pointer:
		elem := reflect.New(dt.Elem())
		if err := Convert(src, elem.Elem(), allowed); err != nil {
			return err
		}

		dst.Set(elem)

		return nil

	case dt.Kind() == reflect.Slice && dt.Elem().Kind() == reflect.Uint8:
		switch s := src.(type) {
		case []byte:
			dst.SetBytes(bytes.Clone(s))
		case string:
			dst.SetBytes([]byte(s))
		default:
			return fmt.Errorf("%w: %T to %s", ErrUnsupported, src, dt)
		}

		return nil

	case dt.Kind() == reflect.Slice:
		return convertSlice(src, dst, allowed)

	case dt.Kind() == reflect.Array:
		return convertArray(src, dst, allowed)
	}

	return convertScalar(src, dst, allowed)
}

func multiValue(src any, dt reflect.Type) ([]any, error) {
	values, ok := src.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: single value %T to %s", ErrUnsupported, src, dt)
	}

	return values, nil
}

func convertSlice(src any, dst reflect.Value, allowed options.CategoryEnum) error {
	values, err := multiValue(src, dst.Type())
	if err != nil {
		return err
	}

	out := reflect.MakeSlice(dst.Type(), len(values), len(values))
	for i, v := range values {
		if err := Convert(v, out.Index(i), allowed); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	dst.Set(out)

	return nil
}

func convertArray(src any, dst reflect.Value, allowed options.CategoryEnum) error {
	values, err := multiValue(src, dst.Type())
	if err != nil {
		return err
	}

	n := dst.Len()

	switch {
	case !allowed.Any(options.CategorySafeArray | options.CategoryUnsafeArray):
		return fmt.Errorf("%w: multi-value to %s", ErrNotAllowed, dst.Type())
	case len(values) != n && !allowed.Has(options.CategoryUnsafeArray):
		return fmt.Errorf("%w: %d values into %s", ErrLossy, len(values), dst.Type())
	}

	dst.SetZero()

	for i := 0; i < n && i < len(values); i++ {
		if err := Convert(values[i], dst.Index(i), allowed); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

func convertScalar(src any, dst reflect.Value, allowed options.CategoryEnum) error {
	dt := dst.Type()
	dk := FromReflectType(dt)

	if dk != 0 && dk != KindPrimitiveEnum {
		return convertBasic(src, dst, dk, allowed)
	}

	base := Underlying(dt)
	if base == nil {
		return fmt.Errorf("%w: %T to %s", ErrUnsupported, src, dt)
	}

	if base.Kind() == reflect.String && dk == KindPrimitiveEnum && !allowed.Has(options.CategoryEnumString) {
		return fmt.Errorf("%w: %T to enum %s", ErrNotAllowed, src, dt)
	}

	tmp := reflect.New(base).Elem()
	if err := convertBasic(src, tmp, FromReflectType(base), allowed); err != nil {
		return err
	}

	dst.Set(tmp.Convert(dt))

	if dt.Implements(validatorType) && !dst.Interface().(validator).IsValid() {
		return fmt.Errorf("%w: %v is not a valid %s", ErrInvalidValue, src, dt)
	}

	return nil
}

func convertBasic(src any, dst reflect.Value, dk KindEnum, allowed options.CategoryEnum) error {
	sk := FromValue(src)
	if sk == 0 || sk == KindPrimitiveEnum {
		return fmt.Errorf("%w: %T is not a canonical value", ErrUnsupported, src)
	}

	if sk == dk {
		dst.Set(reflect.ValueOf(src))
		return nil
	}

	cats := CategoriesOf(ConversionPair{sk, dk})
	if cats == 0 {
		return fmt.Errorf("%w: %s to %s", ErrUnsupported, sk, dk)
	}

	if !allowed.Any(cats) {
		return fmt.Errorf("%w: %s to %s", ErrNotAllowed, sk, dk)
	}

	unsafe := allowed.Has(options.CategoryUnsafeNumber)

	switch {
	case sk.IsNumber() && dk.IsNumber():
		return setNumber(src, dst, dk, unsafe)

	case sk == KindString && dk.IsNumber():
		return parseNumber(src.(string), dst, dk)

	case sk.IsNumber() && dk == KindString:
		dst.SetString(formatNumber(src))
		return nil

	case sk.IsInteger() && dk == KindBool:
		switch reflect.ValueOf(src).Int() {
		case 0:
			dst.SetBool(false)
		case 1:
			dst.SetBool(true)
		default:
			return fmt.Errorf("%w: %v is not 0 or 1", ErrLossy, src)
		}

		return nil

	case sk == KindBool && dk.IsInteger():
		if src.(bool) {
			return setNumber(int64(1), dst, dk, unsafe)
		}

		return setNumber(int64(0), dst, dk, unsafe)

	case sk == KindString && dk == KindBool:
		b, err := parseBool(src.(string))
		if err != nil {
			return err
		}

		dst.SetBool(b)

		return nil

	case sk == KindBool && dk == KindString:
		dst.SetString(strconv.FormatBool(src.(bool)))
		return nil

	case sk == KindString && dk == KindTime:
		t, err := time.Parse(time.RFC3339Nano, src.(string))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		dst.Set(reflect.ValueOf(t))

		return nil

	case sk == KindTime && dk == KindString:
		dst.SetString(src.(time.Time).Format(time.RFC3339Nano))
		return nil

	case sk.IsInteger() && dk == KindTime:
		dst.Set(reflect.ValueOf(time.Unix(reflect.ValueOf(src).Int(), 0).UTC()))
		return nil

	case sk == KindTime && dk.IsInteger():
		t := src.(time.Time)
		if t.Nanosecond() != 0 && !unsafe {
			return fmt.Errorf("%w: %s has sub-second precision", ErrLossy, t)
		}

		return setNumber(t.Unix(), dst, dk, unsafe)

	case sk == KindString && dk == KindDuration:
		d, err := time.ParseDuration(src.(string))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		dst.SetInt(int64(d))

		return nil

	case sk.IsInteger() && dk == KindDuration:
		dst.SetInt(reflect.ValueOf(src).Int())
		return nil

	case sk.IsFloat() && dk == KindDuration:
		dst.SetInt(int64(reflect.ValueOf(src).Float() * float64(time.Second)))
		return nil
	}

	return fmt.Errorf("%w: %s to %s", ErrUnsupported, sk, dk)
}

func setNumber(src any, dst reflect.Value, dk KindEnum, unsafe bool) error {
	lossy := func() error {
		if unsafe {
			return nil
		}

		return fmt.Errorf("%w: %v into %s", ErrLossy, src, dk)
	}

	sv := reflect.ValueOf(src)

	switch {
	case dk.IsSigned():
		var i int64

		if sv.CanInt() {
			i = sv.Int()
		} else {
			f := sv.Float()
			i = int64(f)

			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				if err := lossy(); err != nil {
					return err
				}
			}
		}

		if dst.OverflowInt(i) {
			if err := lossy(); err != nil {
				return err
			}
		}

		dst.SetInt(i)

	case dk.IsUnsigned():
		var u uint64

		if sv.CanInt() {
			i := sv.Int()
			u = uint64(i)

			if i < 0 {
				if err := lossy(); err != nil {
					return err
				}
			}
		} else {
			f := sv.Float()
			u = uint64(f)

			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				if err := lossy(); err != nil {
					return err
				}
			}
		}

		if dst.OverflowUint(u) {
			if err := lossy(); err != nil {
				return err
			}
		}

		dst.SetUint(u)

	default:
		var f float64

		if sv.CanInt() {
			i := sv.Int()
			f = float64(i)

			if i != int64(f) || f >= math.MaxInt64 {
				if err := lossy(); err != nil {
					return err
				}
			}
		} else {
			f = sv.Float()
		}

		if dk == KindFloat32 && float64(float32(f)) != f && !math.IsNaN(f) {
			if err := lossy(); err != nil {
				return err
			}
		}

		dst.SetFloat(f)
	}

	return nil
}

func parseNumber(s string, dst reflect.Value, dk KindEnum) error {
	switch {
	case dk.IsSigned():
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, dk.Bits())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		dst.SetInt(i)

	case dk.IsUnsigned():
		u, err := strconv.ParseUint(strings.TrimSpace(s), 10, dk.Bits())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		dst.SetUint(u)

	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), dk.Bits())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		dst.SetFloat(f)
	}

	return nil
}

func formatNumber(v any) string {
	sv := reflect.ValueOf(v)
	if sv.CanInt() {
		return strconv.FormatInt(sv.Int(), 10)
	}

	return strconv.FormatFloat(sv.Float(), 'g', -1, 64)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
	}
}

// Export returns the canonical store value of v. Nil pointers, interfaces and
// slices export as nil.
func Export(v reflect.Value, allowed options.CategoryEnum) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}

		return Export(v.Elem(), allowed)
	}

	t := v.Type()

	switch {
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		if v.IsNil() {
			return nil, nil
		}

		return bytes.Clone(v.Bytes()), nil

	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		if t.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}

		if t.Kind() == reflect.Array && !allowed.Any(options.CategorySafeArray|options.CategoryUnsafeArray) {
			return nil, fmt.Errorf("%w: %s to multi-value", ErrNotAllowed, t)
		}

		out := make([]any, v.Len())

		for i := range v.Len() {
			e, err := Export(v.Index(i), allowed)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}

			if e == nil {
				return nil, fmt.Errorf("%w: nil element %d in %s", ErrUnsupported, i, t)
			}

			if _, nested := e.([]any); nested {
				return nil, fmt.Errorf("%w: nested multi-value in %s", ErrUnsupported, t)
			}

			out[i] = e
		}

		return out, nil
	}

	switch k := FromReflectType(t); {
	case k.IsSigned():
		return v.Int(), nil

	case k.IsUnsigned():
		u := v.Uint()
		if u > math.MaxInt64 && !allowed.Has(options.CategoryUnsafeNumber) {
			return nil, fmt.Errorf("%w: %d does not fit a long", ErrLossy, u)
		}

		return int64(u), nil

	case k.IsFloat():
		return v.Float(), nil

	case k == KindBool:
		return v.Bool(), nil

	case k == KindString:
		return v.String(), nil

	case k == KindTime:
		return v.Interface().(time.Time).UTC(), nil

	case k == KindDuration:
		d := time.Duration(v.Int())

		switch {
		case allowed.Has(options.CategoryDuration):
			return d.String(), nil
		case allowed.Has(options.CategoryNanoseconds):
			return int64(d), nil
		case allowed.Has(options.CategorySeconds):
			return d.Seconds(), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrNotAllowed, t)
		}
	}

	base := Underlying(t)
	if base == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}

	if base.Kind() == reflect.String && !allowed.Has(options.CategoryEnumString) {
		return nil, fmt.Errorf("%w: enum %s", ErrNotAllowed, t)
	}

	return Export(v.Convert(base), allowed)
}
