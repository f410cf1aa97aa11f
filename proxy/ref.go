package proxy

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Ref is a lazy to-one reference to a *T stored at a path.
type Ref[T any] struct {
	mu     sync.Mutex
	path   string
	loader Loader
	state  State
	value  *T
}

// New returns an Unresolved reference to path. No load happens until Get.
func New[T any](path string, loader Loader) *Ref[T] {
	return &Ref[T]{path: path, loader: loader}
}

// To returns an unbound reference, used when building objects for writing.
func To[T any](path string) *Ref[T] {
	return &Ref[T]{path: path}
}

// Resolved returns a reference that already holds v. A nil v yields a Null
// reference.
func Resolved[T any](path string, v *T) *Ref[T] {
	r := &Ref[T]{path: path, value: v, state: StateResolved}
	if v == nil {
		r.state = StateNull
	}

	return r
}

// Bind points the reference at path and resets it to Unresolved.
func (r *Ref[T]) Bind(path string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.path = path
	r.loader = loader
	r.state = StateUnresolved
	r.value = nil
}

// BindPaths implements Handle.
func (r *Ref[T]) BindPaths(paths []string, loader Loader) error {
	if len(paths) != 1 {
		return fmt.Errorf("proxy: reference takes one path, got %d", len(paths))
	}

	r.Bind(paths[0], loader)

	return nil
}

// Get returns the referenced object, loading it on first call. A Null
// reference returns (nil, nil).
func (r *Ref[T]) Get(ctx context.Context) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateResolved:
		return r.value, nil
	case StateNull:
		return nil, nil
	}

	if r.path == "" {
		r.state = StateNull
		return nil, nil
	}

	v, err := load[T](ctx, r.loader, r.path)
	switch {
	case isAbsent(err, r.path):
		r.state = StateNull
		return nil, nil
	case err != nil:
		return nil, err
	case v == nil:
		r.state = StateNull
		return nil, nil
	}

	r.value = v
	r.state = StateResolved

	return v, nil
}

// TargetPath returns the path of the referenced node.
func (r *Ref[T]) TargetPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.path
}

// TargetPaths implements Handle.
func (r *Ref[T]) TargetPaths() []string {
	if p := r.TargetPath(); p != "" {
		return []string{p}
	}

	return nil
}

// Resolve implements Handle.
func (r *Ref[T]) Resolve(ctx context.Context) (any, error) {
	v, err := r.Get(ctx)
	if err != nil || v == nil {
		return nil, err
	}

	return v, nil
}

// State returns the resolution state.
func (r *Ref[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// TargetType returns T.
func (r *Ref[T]) TargetType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Multiple implements Handle; a Ref has one target.
func (r *Ref[T]) Multiple() bool { return false }

// String describes the reference without resolving it.
func (r *Ref[T]) String() string {
	return fmt.Sprintf("Ref[%s](%s, %s)", r.TargetType(), r.TargetPath(), r.State())
}
