package caster

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"

	"ocm-mapper/utils"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
	ErrRejected             = errors.New("caster rejected the value")
)

type Caster struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// Parse inspects the provided function and returns a Caster struct if it is a valid caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
func Parse(fn any) (Caster, error) {
	if fn == nil {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return Caster{}, ErrCasterIsNotAFunction
	}

	if fnType.NumIn() != 1 || fnType.NumOut() == 0 || fnType.IsVariadic() {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Pointer && src.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Pointer && dst.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	caster := Caster{
		Src: src,
		Dst: dst,
		fn:  fnVal,
	}

	if fnPC := runtime.FuncForPC(fnVal.Pointer()); fnPC != nil {
		alias, name := utils.Unpack2(strings.SplitN(fnPC.Name(), ".", 2))
		caster.Name = name
		caster.PackageAlias = utils.Second(path.Split(alias))
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case isError(last):
			caster.HasErr = true
		}
		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true
		return caster, nil
	}
}

// MustParse is like Parse but panics on error.
func MustParse(fn any) Caster {
	c, err := Parse(fn)
	if err != nil {
		panic(err)
	}

	return c
}

// FuncName returns the qualified function name, e.g. "strconv.Itoa".
func (c Caster) FuncName() string {
	if c.PackageAlias == "" {
		return c.Name
	}

	return c.PackageAlias + "." + c.Name
}

// Call invokes the caster with src, which must be assignable to Src. A false
// bool result is reported as ErrRejected.
func (c Caster) Call(src reflect.Value) (reflect.Value, error) {
	if !c.fn.IsValid() {
		return reflect.Value{}, ErrCasterIsNotAFunction
	}

	if !src.IsValid() {
		src = reflect.Zero(c.Src)
	}

	if !src.Type().AssignableTo(c.Src) {
		if !src.CanConvert(c.Src) {
			return reflect.Value{}, fmt.Errorf("%s: cannot use %s as %s", c.FuncName(), src.Type(), c.Src)
		}

		src = src.Convert(c.Src)
	}

	out := c.fn.Call([]reflect.Value{src})

	if c.HasErr {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return reflect.Value{}, fmt.Errorf("%s: %w", c.FuncName(), errVal.Interface().(error))
		}
	}

	if c.HasBool && !out[1].Bool() {
		return reflect.Value{}, fmt.Errorf("%s: %w", c.FuncName(), ErrRejected)
	}

	return out[0], nil
}

var errorType = reflect.TypeFor[error]()

func isError(t reflect.Type) bool {
	return t.Implements(errorType)
}
