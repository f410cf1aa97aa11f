package mapping_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm-mapper/internal/testmodel"
	"ocm-mapper/mapping"
	"ocm-mapper/ocmerr"
)

// resolved is the part of a Binding that must not depend on how the mapping
// was declared.
type resolved struct {
	Field     string
	Kind      mapping.FieldKind
	Lazy      bool
	StoreName string
	Target    reflect.Type
	Converter string
	Required  bool
	OmitEmpty bool
}

func resolvedOf(t *testing.T, r *mapping.Registry) map[string][]resolved {
	t.Helper()

	out := make(map[string][]resolved)

	for _, d := range r.All() {
		for _, b := range d.Bindings() {
			rb := resolved{
				Field:     b.Mapping.Field,
				Kind:      b.Kind,
				Lazy:      b.Lazy,
				StoreName: b.StoreName,
				Target:    b.Target,
				Required:  b.Mapping.Required,
				OmitEmpty: b.Mapping.OmitEmpty,
			}

			if b.Converter != nil {
				rb.Converter = b.Converter.Name
			}

			out[d.JcrType] = append(out[d.JcrType], rb)
		}
	}

	return out
}

func TestBuild_MatchesCodeRegistration(t *testing.T) {
	mf, err := mapping.LoadFile(filepath.Join(testdata, "mappings.yaml"))
	require.NoError(t, err)

	fromFile, err := mapping.Build(mf, testmodel.Types(), testmodel.Converters())
	require.NoError(t, err)

	typeCmp := cmp.Comparer(func(a, b reflect.Type) bool { return a == b })
	if diff := cmp.Diff(resolvedOf(t, testmodel.Registry()), resolvedOf(t, fromFile), typeCmp); diff != "" {
		t.Errorf("file and code registrations differ (-code +file):\n%s", diff)
	}
}

func TestBuild_RoundTripsDescriptors(t *testing.T) {
	code := testmodel.Registry()

	mf := mapping.FileFromRegistry(code, mapping.TypeName)

	data, err := mapping.Marshal(mf)
	require.NoError(t, err)

	parsed, err := mapping.Parse(data)
	require.NoError(t, err)

	built, err := mapping.Build(parsed, testmodel.Types(), testmodel.Converters())
	require.NoError(t, err)

	for _, d := range code.All() {
		got, err := built.Describe(d.Type)
		require.NoError(t, err)
		assert.Equal(t, d.JcrType, got.JcrType)
		assert.Equal(t, d.Fields(), got.Fields(), d.Type.String())
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantKinds []ocmerr.Kind
		wantMsg   string
	}{
		{
			name: "unknown type",
			yaml: `
mappings:
  - type: testmodel.Detial
    jcrType: ocm:detail
    fields: [{Path: "@path"}]`,
			wantKinds: []ocmerr.Kind{ocmerr.KindUnmappedType},
			wantMsg:   "did you mean testmodel.Detail?",
		},
		{
			name: "undeclared converter",
			yaml: `
mappings:
  - type: testmodel.Person
    jcrType: ocm:person
    fields:
      - {Path: "@path"}
      - {field: Cents, converter: cents}`,
			wantKinds: []ocmerr.Kind{ocmerr.KindInvalidMapping},
			wantMsg:   "missing from the converters section",
		},
		{
			name: "declared but not registered",
			yaml: `
converters: [{name: yen}]
mappings:
  - type: testmodel.Detail
    jcrType: ocm:detail
    fields: [{Path: "@path"}]`,
			wantKinds: []ocmerr.Kind{ocmerr.KindInvalidMapping},
			wantMsg:   `converter "yen" is declared but not registered`,
		},
		{
			name: "relation target unmapped",
			yaml: `
mappings:
  - type: testmodel.Main
    jcrType: ocm:main
    fields: [{Path: "@path"}, {Owner: ocm:owner}]`,
			wantKinds: []ocmerr.Kind{ocmerr.KindInvalidMapping, ocmerr.KindUnmappedType},
			wantMsg:   "field Owner targets testmodel.Person",
		},
		{
			name: "all failures reported",
			yaml: `
mappings:
  - type: testmodel.Nope
    jcrType: ocm:nope
  - type: testmodel.Detail
    jcrType: ocm:detail
    fields: [Field]`,
			wantKinds: []ocmerr.Kind{ocmerr.KindUnmappedType, ocmerr.KindInvalidMapping},
			wantMsg:   "identity field, got 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mf, err := mapping.Parse([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = mapping.Build(mf, testmodel.Types(), testmodel.Converters())
			require.Error(t, err)

			for _, kind := range tt.wantKinds {
				assert.ErrorIs(t, err, kind)
			}

			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}

	_, err := mapping.Build(nil, nil, nil)
	assert.ErrorIs(t, err, ocmerr.KindInvalidMapping)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "testmodel.Detail", mapping.TypeName(reflect.TypeFor[*testmodel.Detail]()))

	types := mapping.TypesOf(&testmodel.Detail{})
	assert.Equal(t, reflect.TypeFor[testmodel.Detail](), types["testmodel.Detail"])
	assert.Equal(t, reflect.TypeFor[testmodel.Detail](), types["ocm-mapper/internal/testmodel.Detail"])
}
