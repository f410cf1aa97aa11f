package ocmerr

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detail struct{}

func TestNew_ConstructorForms(t *testing.T) {
	cause := errors.New("disk on fire")

	tests := []struct {
		name      string
		err       *Error
		wantMsg   string
		wantCause error
		wantText  string
	}{
		{
			name:     "message only",
			err:      New(KindUnmappedType, Message("no descriptor")),
			wantMsg:  "no descriptor",
			wantText: "UnmappedType: no descriptor",
		},
		{
			name:      "message and cause",
			err:       New(KindPathNotFound, Message("fetch %s", "/a"), Cause(cause)),
			wantMsg:   "fetch /a",
			wantCause: cause,
			wantText:  "PathNotFound: fetch /a: disk on fire",
		},
		{
			name:      "cause only",
			err:       New(KindFieldConversion, Cause(cause)),
			wantCause: cause,
			wantText:  "FieldConversion: disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.Equal(t, tt.wantCause, tt.err.Cause)
			assert.Equal(t, tt.wantText, tt.err.Error())
		})
	}
}

func TestError_IncludesTypeAndPath(t *testing.T) {
	err := New(KindIncorrectPersistentClass,
		Type(reflect.TypeOf(detail{})),
		Path("/main/detail"),
		Message("node type %q does not match %q", "ocm:main", "ocm:detail"),
	)

	assert.Equal(t,
		`IncorrectPersistentClass [type=ocmerr.detail path=/main/detail]: node type "ocm:main" does not match "ocm:detail"`,
		err.Error())
}

func TestType_Forms(t *testing.T) {
	assert.Equal(t, "ocm:detail", New(KindUnmappedType, Type("ocm:detail")).Type)
	assert.Equal(t, "*ocmerr.detail", New(KindUnmappedType, Type(&detail{})).Type)
	assert.Equal(t, "ocmerr.detail", New(KindUnmappedType, Type(reflect.TypeOf(detail{}))).Type)
	assert.Empty(t, New(KindUnmappedType, Type(nil)).Type)
}

func TestKindMatching(t *testing.T) {
	root := errors.New("root")
	inner := New(KindUnmappedType, Cause(root))
	outer := fmt.Errorf("load: %w", New(KindIncorrectPersistentClass, Cause(inner)))

	assert.True(t, errors.Is(outer, KindIncorrectPersistentClass))
	assert.True(t, errors.Is(outer, KindUnmappedType))
	assert.True(t, errors.Is(outer, root))
	assert.False(t, errors.Is(outer, KindPathNotFound))
	assert.True(t, Is(outer, KindUnmappedType))

	assert.Equal(t, KindIncorrectPersistentClass, KindOf(outer))
	assert.Equal(t, Kind(0), KindOf(root))

	var e *Error
	require.True(t, errors.As(outer, &e))
	assert.Same(t, inner, e.Cause)
}

func TestIsAbsent(t *testing.T) {
	cause := errors.New("node not found")
	absent := Absent("/people/ada", cause)

	tests := []struct {
		name string
		err  error
		path string
		want bool
	}{
		{"fetch of the path", absent, "/people/ada", true},
		{"wrapped by fmt", fmt.Errorf("load: %w", absent), "/people/ada", true},
		{"other path", absent, "/main", false},
		{"mapping failure of existing node", New(KindPathNotFound, Path("/people/ada"), Message("required property ocm:name is missing")), "/people/ada", false},
		{"absence nested under a mapping failure", New(KindPathNotFound, Path("/main"), Cause(absent)), "/people/ada", false},
		{"nil", nil, "/people/ada", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAbsent(tt.err, tt.path))
		})
	}

	assert.ErrorIs(t, absent, KindPathNotFound)
	assert.ErrorIs(t, absent, cause)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "DuplicateMapping", KindDuplicateMapping.String())
	assert.Equal(t, "InvalidPath", KindInvalidPath.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
	assert.Equal(t, "Kind(8)", Kind(KindTotal).String())
}
