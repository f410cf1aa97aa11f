package ocmerr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Error is a mapping failure.
type Error struct {
	Kind    Kind
	Type    string // offending Go type or node type tag, if known
	Path    string // offending store path, if known
	Message string
	Cause   error

	absent bool
}

// Option configures an Error built by New.
type Option func(*Error)

// New builds an Error of the given kind.
func New(kind Kind, opts ...Option) *Error {
	e := &Error{Kind: kind}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Absent builds the PathNotFound error reporting that nothing is stored at
// path. Only the fetch of path itself should build it.
func Absent(path string, cause error) *Error {
	return &Error{Kind: KindPathNotFound, Path: path, Cause: cause, absent: true}
}

// Message sets the human-readable message. Arguments are formatted with fmt.Sprintf.
func Message(format string, args ...any) Option {
	return func(e *Error) {
		if len(args) == 0 {
			e.Message = format
			return
		}

		e.Message = fmt.Sprintf(format, args...)
	}
}

// Cause records the underlying error.
func Cause(err error) Option {
	return func(e *Error) {
		e.Cause = err
	}
}

// Type records the offending type. Accepts a reflect.Type, a string, or any
// value whose dynamic type should be reported.
func Type(t any) Option {
	return func(e *Error) {
		switch tt := t.(type) {
		case nil:
		case reflect.Type:
			e.Type = tt.String()
		case string:
			e.Type = tt
		default:
			e.Type = reflect.TypeOf(t).String()
		}
	}
}

// Path records the offending store path.
func Path(p string) Option {
	return func(e *Error) {
		e.Path = p
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	var where []string
	if e.Type != "" {
		where = append(where, "type="+e.Type)
	}

	if e.Path != "" {
		where = append(where, "path="+e.Path)
	}

	if len(where) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(where, " "))
		b.WriteString("]")
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches a Kind target against this error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// Is reports whether any *Error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kind)
}

// IsAbsent reports whether err says that nothing is stored at path. A
// PathNotFound raised while mapping a node that exists, or one reported for
// another path, does not count.
func IsAbsent(err error, path string) bool {
	var e *Error
	return errors.As(err, &e) && e.absent && e.Path == path
}
