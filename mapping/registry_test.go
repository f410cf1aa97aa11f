package mapping_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm-mapper/internal/testmodel"
	"ocm-mapper/mapping"
	"ocm-mapper/ocmerr"
	"ocm-mapper/proxy"
)

type target struct {
	Path string
}

type note struct {
	Path    string
	Title   string
	Count   int
	Meta    map[string]string
	Link    *target
	Links   *proxy.List[target]
	Eager   []*target
	Ref     *proxy.Ref[target]
	hidden  string
	Created int64
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name     string
		fields   []mapping.FieldMapping
		wantKind ocmerr.Kind
		wantMsg  string
	}{
		{
			name:   "ok",
			fields: []mapping.FieldMapping{mapping.Identity("Path"), mapping.Property("Title", "ocm:title")},
		},
		{
			name:     "no identity",
			fields:   []mapping.FieldMapping{mapping.Property("Title", "ocm:title")},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "exactly one identity field, got 0",
		},
		{
			name: "two identities",
			fields: []mapping.FieldMapping{
				mapping.Identity("Path"),
				mapping.Identity("Title"),
			},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "share store path",
		},
		{
			name:     "missing field",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), mapping.Property("Titel", "ocm:title")},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "did you mean Title?",
		},
		{
			name:     "unexported field",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), mapping.Property("hidden", "ocm:hidden")},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "not exported",
		},
		{
			name: "field mapped twice",
			fields: []mapping.FieldMapping{
				mapping.Identity("Path"),
				mapping.Property("Title", "ocm:a"),
				mapping.Property("Title", "ocm:b"),
			},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "mapped twice",
		},
		{
			name: "store path shared",
			fields: []mapping.FieldMapping{
				mapping.Identity("Path"),
				mapping.Property("Title", "ocm:x"),
				mapping.Property("Count", "ocm:x"),
			},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "share store path",
		},
		{
			name:     "identity not a string",
			fields:   []mapping.FieldMapping{mapping.Identity("Count")},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "must be a string",
		},
		{
			name:     "bad store name",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), mapping.Property("Title", "ocm:a/b")},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "bad store name",
		},
		{
			name:     "map not storable",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), mapping.Property("Meta", "ocm:meta")},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "cannot be stored",
		},
		{
			name: "lazy without handle",
			fields: []mapping.FieldMapping{
				mapping.Identity("Path"),
				{Field: "Link", Path: "ocm:link", Kind: mapping.KindRelation, Lazy: true},
			},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "needs a proxy handle",
		},
		{
			name:     "list as relation",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), mapping.Relation("Links", "ocm:links")},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "unsupported type",
		},
		{
			name:     "unknown converter",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), {Field: "Count", Path: "ocm:count", Converter: "nope"}},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  `unknown converter "nope"`,
		},
		{
			name:     "converter type mismatch",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), {Field: "Count", Path: "ocm:count", Converter: "cents"}},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "produces testmodel.Amount",
		},
		{
			name:     "path reserved",
			fields:   []mapping.FieldMapping{mapping.Identity("Path"), {Field: "Title", Name: mapping.IdentityPath, Kind: mapping.KindProperty}},
			wantKind: ocmerr.KindInvalidMapping,
			wantMsg:  "reserved for identity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mapping.NewRegistry(testmodel.Converters())

			err := mapping.Register[note](r, "ocm:note", tt.fields...)
			if tt.wantKind == 0 {
				require.NoError(t, err)
				assert.True(t, r.Has(reflect.TypeFor[*note]()))

				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.ErrorContains(t, err, tt.wantMsg)
			assert.False(t, r.Has(reflect.TypeFor[note]()))
		})
	}
}

type stamp struct {
	Created int64
}

type owner struct {
	Name string
}

type embedding struct {
	stamp
	*owner
	Path string
}

func TestRegistry_EmbeddedFields(t *testing.T) {
	tests := []struct {
		name    string
		field   mapping.FieldMapping
		wantMsg string
	}{
		{name: "promoted through value", field: mapping.Property("Created", "ocm:created")},
		{name: "promoted through pointer", field: mapping.Property("Name", "ocm:name"), wantMsg: "promoted through embedded pointer owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mapping.NewRegistry(nil)

			err := mapping.Register[embedding](r, "ocm:embedding", mapping.Identity("Path"), tt.field)
			if tt.wantMsg == "" {
				require.NoError(t, err)

				d, err := r.Describe(reflect.TypeFor[embedding]())
				require.NoError(t, err)

				b, ok := d.Binding("Created")
				require.True(t, ok)
				assert.Equal(t, []int{0, 0}, b.Index)

				return
			}

			require.ErrorIs(t, err, ocmerr.KindInvalidMapping)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestRegistry_Duplicates(t *testing.T) {
	r := mapping.NewRegistry(nil)
	require.NoError(t, mapping.Register[target](r, "ocm:target", mapping.Identity("Path")))

	err := mapping.Register[*target](r, "ocm:other", mapping.Identity("Path"))
	assert.ErrorIs(t, err, ocmerr.KindDuplicateMapping)

	err = mapping.Register[note](r, "ocm:target", mapping.Identity("Path"))
	assert.ErrorIs(t, err, ocmerr.KindDuplicateMapping)

	err = mapping.Register[note](r, "", mapping.Identity("Path"))
	assert.ErrorIs(t, err, ocmerr.KindInvalidMapping)

	err = r.Register(reflect.TypeFor[int](), "ocm:int")
	assert.ErrorIs(t, err, ocmerr.KindInvalidMapping)

	err = r.Register(nil, "ocm:nil")
	assert.ErrorIs(t, err, ocmerr.KindInvalidMapping)
}

func TestRegistry_InferredBindings(t *testing.T) {
	r := mapping.NewRegistry(nil)
	require.NoError(t, mapping.Register[target](r, "ocm:target", mapping.Identity("Path")))

	fields := []mapping.FieldMapping{
		{Field: "Path", Path: mapping.IdentityPath},
		{Field: "Title"},
		{Field: "Link", Path: "ocm:link"},
		{Field: "Links", Path: "ocm:links"},
		{Field: "Eager", Path: "ocm:eager"},
		{Field: "Ref", Path: "ocm:ref", Lazy: true},
	}
	require.NoError(t, mapping.Register[note](r, "ocm:note", fields...))
	require.NoError(t, r.Verify())

	d, err := mapping.Describe[note](r)
	require.NoError(t, err)

	// fields are reported exactly as supplied
	assert.Equal(t, fields, d.Fields())
	assert.Equal(t, "Path", d.Identity().Mapping.Field)

	tests := []struct {
		field     string
		kind      mapping.FieldKind
		lazy      bool
		storeName string
	}{
		{field: "Path", kind: mapping.KindIdentity, storeName: mapping.IdentityPath},
		{field: "Title", kind: mapping.KindProperty, storeName: "Title"},
		{field: "Link", kind: mapping.KindRelation, storeName: "ocm:link"},
		{field: "Links", kind: mapping.KindCollection, lazy: true, storeName: "ocm:links"},
		{field: "Eager", kind: mapping.KindCollection, storeName: "ocm:eager"},
		{field: "Ref", kind: mapping.KindRelation, lazy: true, storeName: "ocm:ref"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			b, ok := d.Binding(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.kind, b.Kind)
			assert.Equal(t, tt.lazy, b.Lazy)
			assert.Equal(t, tt.storeName, b.StoreName)

			if tt.kind.IsReference() {
				assert.Equal(t, reflect.TypeFor[target](), b.Target)
			}
		})
	}

	_, ok := d.Binding("Count")
	assert.False(t, ok)
}

func TestRegistry_Verify(t *testing.T) {
	r := mapping.NewRegistry(nil)
	require.NoError(t, mapping.Register[note](r, "ocm:note", mapping.Identity("Path"), mapping.Relation("Link", "ocm:link")))

	err := r.Verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, ocmerr.KindInvalidMapping)
	assert.ErrorIs(t, err, ocmerr.KindUnmappedType)
}

func TestRegistry_Describe(t *testing.T) {
	r := testmodel.Registry()

	d, err := mapping.Describe[testmodel.Detail](r)
	require.NoError(t, err)
	assert.Equal(t, testmodel.DetailType, d.JcrType)
	assert.Equal(t, []mapping.FieldMapping{
		mapping.Identity("Path"),
		mapping.Property("Field", "ocm:field"),
	}, d.Fields())

	byTag, ok := r.Lookup(testmodel.DetailType)
	require.True(t, ok)
	assert.Same(t, d, byTag)

	_, ok = r.Lookup("ocm:missing")
	assert.False(t, ok)

	_, err = mapping.Describe[note](r)
	assert.ErrorIs(t, err, ocmerr.KindUnmappedType)

	tags := make([]string, 0, 3)
	for _, d := range r.All() {
		tags = append(tags, d.JcrType)
	}

	assert.Equal(t, []string{testmodel.DetailType, testmodel.MainType, testmodel.PersonType}, tags)
	assert.Equal(t, reflect.TypeFor[testmodel.Detail](), r.Types()[0])
}

func ExampleMappingDescriptor_String() {
	r := testmodel.Registry()

	d, _ := mapping.Describe[testmodel.Main](r)
	fmt.Println(d)

	// Output:
	// testmodel.Main (ocm:main)
	//   Path         identity   -> @path
	//   Title        property   -> ocm:title
	//   Created      property   -> ocm:created
	//   Tags         property   -> ocm:tags
	//   Priority     property   -> ocm:priority
	//   Detail       relation   -> ocm:detail lazy
	//   Extras       collection -> ocm:extras lazy
	//   Owner        relation   -> ocm:owner
}
