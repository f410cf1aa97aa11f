package proxy

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// List is a lazy to-many reference. Members whose target is absent are
// skipped when the list resolves.
type List[T any] struct {
	mu     sync.Mutex
	paths  []string
	loader Loader
	state  State
	values []*T
}

// NewList returns an Unresolved list over paths.
func NewList[T any](paths []string, loader Loader) *List[T] {
	return &List[T]{paths: slices.Clone(paths), loader: loader}
}

// ListOf returns an unbound list, used when building objects for writing.
func ListOf[T any](paths ...string) *List[T] {
	return &List[T]{paths: paths}
}

// BindPaths implements Handle.
func (l *List[T]) BindPaths(paths []string, loader Loader) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.paths = slices.Clone(paths)
	l.loader = loader
	l.state = StateUnresolved
	l.values = nil

	return nil
}

// Get returns the present members in path order, loading them on first call.
// A failed member load leaves the whole list Unresolved.
func (l *List[T]) Get(ctx context.Context) ([]*T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateResolved:
		return slices.Clone(l.values), nil
	case StateNull:
		return nil, nil
	}

	if l.paths == nil {
		l.state = StateNull
		return nil, nil
	}

	values := make([]*T, 0, len(l.paths))

	for _, p := range l.paths {
		v, err := load[T](ctx, l.loader, p)
		switch {
		case isAbsent(err, p):
			continue
		case err != nil:
			return nil, err
		case v != nil:
			values = append(values, v)
		}
	}

	l.values = values
	l.state = StateResolved

	return slices.Clone(values), nil
}

// TargetPaths returns the member paths.
func (l *List[T]) TargetPaths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.paths)
}

// Len returns the number of member paths, resolved or not.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.paths)
}

// Resolve implements Handle.
func (l *List[T]) Resolve(ctx context.Context) (any, error) {
	return l.Get(ctx)
}

// State returns the resolution state.
func (l *List[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// TargetType returns T.
func (l *List[T]) TargetType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Multiple implements Handle; a List has many targets.
func (l *List[T]) Multiple() bool { return true }

// String describes the list without resolving it.
func (l *List[T]) String() string {
	return fmt.Sprintf("List[%s](%d paths, %s)", l.TargetType(), l.Len(), l.State())
}
