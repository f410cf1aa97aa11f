package proxy

import (
	"context"
	"errors"
	"reflect"

	"ocm-mapper/ocmerr"
)

// ErrUnbound is returned by Get on an Unresolved handle that has no Loader.
var ErrUnbound = errors.New("proxy: handle is not bound to a loader")

// Loader fetches the object stored at path as a value of type *target.
// Absence of the node at path is reported with ocmerr.Absent(path, ...);
// any other error leaves the handle Unresolved.
type Loader interface {
	Load(ctx context.Context, path string, target reflect.Type) (any, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string, target reflect.Type) (any, error)

func (f LoaderFunc) Load(ctx context.Context, path string, target reflect.Type) (any, error) {
	return f(ctx, path, target)
}

// Handle is implemented by *Ref[T] and *List[T]. The mapper binds and reads
// handles through it without knowing T.
type Handle interface {
	TargetType() reflect.Type
	TargetPaths() []string
	State() State
	Multiple() bool
	BindPaths(paths []string, loader Loader) error
	// Resolve is Get with the result as any: a *T or nil for Ref, a []*T
	// for List.
	Resolve(ctx context.Context) (any, error)
}

var handleType = reflect.TypeFor[Handle]()

// IsHandle reports whether t is a pointer to a proxy handle type.
func IsHandle(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Pointer && t.Implements(handleType)
}

// NewHandle allocates a zero handle of type t, which must satisfy IsHandle.
func NewHandle(t reflect.Type) Handle {
	return reflect.New(t.Elem()).Interface().(Handle)
}

func isAbsent(err error, path string) bool {
	return ocmerr.IsAbsent(err, path)
}

func load[T any](ctx context.Context, loader Loader, path string) (*T, error) {
	if loader == nil {
		return nil, ErrUnbound
	}

	target := reflect.TypeFor[T]()

	v, err := loader.Load(ctx, path, target)
	if err != nil {
		return nil, err
	}

	switch typed := v.(type) {
	case nil:
		return nil, nil
	case *T:
		return typed, nil
	default:
		return nil, ocmerr.New(ocmerr.KindIncorrectPersistentClass,
			ocmerr.Type(target),
			ocmerr.Path(path),
			ocmerr.Message("loader returned %T", v))
	}
}
