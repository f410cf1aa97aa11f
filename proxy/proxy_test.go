package proxy

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm-mapper/ocmerr"
)

type detail struct {
	Path  string
	Field string
}

type fakeLoader struct {
	calls   atomic.Int32
	objects map[string]*detail
	fail    map[string]error
}

func (f *fakeLoader) Load(_ context.Context, path string, target reflect.Type) (any, error) {
	f.calls.Add(1)

	if err := f.fail[path]; err != nil {
		return nil, err
	}

	if target != reflect.TypeFor[detail]() {
		return nil, fmt.Errorf("unexpected target %s", target)
	}

	d, ok := f.objects[path]
	if !ok {
		return nil, ocmerr.Absent(path, errors.New("not found"))
	}

	return d, nil
}

func TestRef_ResolvesOnce(t *testing.T) {
	loader := &fakeLoader{objects: map[string]*detail{
		"/main/detail": {Path: "/main/detail", Field: "hello"},
	}}

	ref := New[detail]("/main/detail", loader)
	assert.Equal(t, StateUnresolved, ref.State())
	assert.Zero(t, loader.calls.Load())

	d, err := ref.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", d.Field)
	assert.Equal(t, StateResolved, ref.State())

	again, err := ref.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, d, again)
	assert.EqualValues(t, 1, loader.calls.Load())
}

func TestRef_ConcurrentFirstAccess(t *testing.T) {
	loader := &fakeLoader{objects: map[string]*detail{
		"/d": {Path: "/d"},
	}}
	ref := New[detail]("/d", loader)

	var wg sync.WaitGroup

	results := make([]*detail, 32)
	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			d, err := ref.Get(context.Background())
			assert.NoError(t, err)

			results[i] = d
		}()
	}

	wg.Wait()

	assert.EqualValues(t, 1, loader.calls.Load())
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestRef_AbsentBecomesNull(t *testing.T) {
	loader := &fakeLoader{}
	ref := New[detail]("/missing", loader)

	for range 3 {
		d, err := ref.Get(context.Background())
		require.NoError(t, err)
		assert.Nil(t, d)
	}

	assert.Equal(t, StateNull, ref.State())
	assert.EqualValues(t, 1, loader.calls.Load())
}

func TestRef_ErrorStaysUnresolved(t *testing.T) {
	boom := errors.New("store offline")
	loader := &fakeLoader{
		objects: map[string]*detail{"/d": {Path: "/d"}},
		fail:    map[string]error{"/d": boom},
	}
	ref := New[detail]("/d", loader)

	_, err := ref.Get(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateUnresolved, ref.State())

	delete(loader.fail, "/d")

	d, err := ref.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/d", d.Path)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestRef_MappingFailureIsNotAbsence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"required property missing", ocmerr.New(ocmerr.KindPathNotFound, ocmerr.Path("/d"), ocmerr.Message("required property ocm:name is missing"))},
		{"absence of another path", ocmerr.Absent("/other", errors.New("not found"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{fail: map[string]error{"/d": tt.err}}

			ref := New[detail]("/d", loader)
			d, err := ref.Get(context.Background())
			require.ErrorIs(t, err, ocmerr.KindPathNotFound)
			assert.Nil(t, d)
			assert.Equal(t, StateUnresolved, ref.State())

			list := NewList[detail]([]string{"/d"}, loader)
			_, err = list.Get(context.Background())
			require.ErrorIs(t, err, ocmerr.KindPathNotFound)
			assert.Equal(t, StateUnresolved, list.State())
		})
	}
}

func TestRef_WrongLoaderResult(t *testing.T) {
	ref := New[detail]("/d", LoaderFunc(func(context.Context, string, reflect.Type) (any, error) {
		return "not a detail", nil
	}))

	_, err := ref.Get(context.Background())
	assert.ErrorIs(t, err, ocmerr.KindIncorrectPersistentClass)
	assert.Equal(t, StateUnresolved, ref.State())
}

func TestRef_UnboundAndPrebuilt(t *testing.T) {
	ref := To[detail]("/d")
	assert.Equal(t, "/d", ref.TargetPath())

	_, err := ref.Get(context.Background())
	require.ErrorIs(t, err, ErrUnbound)

	var empty Ref[detail]
	d, err := empty.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Equal(t, StateNull, empty.State())

	v := &detail{Path: "/x"}
	assert.Equal(t, StateResolved, Resolved("/x", v).State())
	assert.Equal(t, StateNull, Resolved[detail]("/x", nil).State())

	got, err := Resolved("/x", v).Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, v, got)
}

func TestRef_BindResets(t *testing.T) {
	loader := &fakeLoader{objects: map[string]*detail{"/a": {Path: "/a"}, "/b": {Path: "/b"}}}
	ref := New[detail]("/a", loader)

	_, err := ref.Get(context.Background())
	require.NoError(t, err)

	require.NoError(t, ref.BindPaths([]string{"/b"}, loader))
	assert.Equal(t, StateUnresolved, ref.State())

	d, err := ref.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/b", d.Path)

	assert.Error(t, ref.BindPaths([]string{"/a", "/b"}, loader))
}

func TestList_SkipsAbsentMembers(t *testing.T) {
	loader := &fakeLoader{objects: map[string]*detail{
		"/a": {Path: "/a"},
		"/c": {Path: "/c"},
	}}

	list := NewList[detail]([]string{"/a", "/b", "/c"}, loader)
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, StateUnresolved, list.State())

	got, err := list.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/a", got[0].Path)
	assert.Equal(t, "/c", got[1].Path)
	assert.Equal(t, StateResolved, list.State())

	_, err = list.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, loader.calls.Load())
}

func TestList_ErrorStaysUnresolved(t *testing.T) {
	boom := errors.New("boom")
	loader := &fakeLoader{
		objects: map[string]*detail{"/a": {Path: "/a"}},
		fail:    map[string]error{"/b": boom},
	}

	list := NewList[detail]([]string{"/a", "/b"}, loader)

	_, err := list.Get(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateUnresolved, list.State())
}

func TestList_Empty(t *testing.T) {
	var list List[detail]

	got, err := list.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, StateNull, list.State())

	assert.Equal(t, []string{"/a"}, ListOf[detail]("/a").TargetPaths())
}

func TestHandles(t *testing.T) {
	refType := reflect.TypeFor[*Ref[detail]]()
	listType := reflect.TypeFor[*List[detail]]()

	assert.True(t, IsHandle(refType))
	assert.True(t, IsHandle(listType))
	assert.False(t, IsHandle(reflect.TypeFor[Ref[detail]]()))
	assert.False(t, IsHandle(reflect.TypeFor[*detail]()))

	h := NewHandle(listType)
	assert.True(t, h.Multiple())
	assert.Equal(t, reflect.TypeFor[detail](), h.TargetType())
	assert.False(t, NewHandle(refType).Multiple())
}

func TestHandle_Resolve(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{objects: map[string]*detail{"/a": {Path: "/a"}}}

	var h Handle = New[detail]("/a", loader)
	v, err := h.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, &detail{Path: "/a"}, v)

	h = New[detail]("/missing", loader)
	v, err = h.Resolve(ctx)
	require.NoError(t, err)
	assert.Nil(t, v)

	h = NewList[detail]([]string{"/a", "/missing"}, loader)
	v, err = h.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*detail{{Path: "/a"}}, v)
}

func ExampleState() {
	fmt.Println(StateUnresolved, StateResolved, StateNull)
	// Output:
	// Unresolved Resolved Null
}
