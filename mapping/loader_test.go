package mapping_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm-mapper/mapping"
)

const testdata = "../internal/testmodel/testdata"

func TestParse_FieldForms(t *testing.T) {
	mf, err := mapping.Parse([]byte(`
mappings:
  - type: testmodel.Detail
    jcrType: ocm:detail
    fields:
      - Path
      - Field: ocm:field
      - field: Other
        name: ocm:other
        kind: property
        required: true
      - {field: Solo}
`))
	require.NoError(t, err)
	assert.Equal(t, "1", mf.Version)
	require.Len(t, mf.TypeMappings, 1)

	assert.Equal(t, []mapping.FieldDef{
		{Field: "Path"},
		{Field: "Field", Path: "ocm:field"},
		{Field: "Other", Name: "ocm:other", Kind: mapping.KindProperty, Required: true},
		{Field: "Solo"},
	}, mf.TypeMappings[0].Fields)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty field", yaml: "mappings: [{type: a.B, fields: ['']}]"},
		{name: "full form without field", yaml: "mappings: [{type: a.B, fields: [{path: x, lazy: true}]}]"},
		{name: "unknown kind", yaml: "mappings: [{type: a.B, fields: [{field: X, kind: link}]}]"},
		{name: "list field", yaml: "mappings: [{type: a.B, fields: [[X]]}]"},
		{name: "not yaml", yaml: "mappings: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapping.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestFieldDef_MarshalYAML(t *testing.T) {
	mf := &mapping.MappingFile{
		Version: "1",
		TypeMappings: []mapping.TypeMapping{{
			Type:    "testmodel.Detail",
			JcrType: "ocm:detail",
			Fields: []mapping.FieldDef{
				{Field: "Path", Path: "@path"},
				{Field: "Title"},
				{Field: "Field", Path: "ocm:field", Required: true},
			},
		}},
	}

	data, err := mapping.Marshal(mf)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `version: "1"`)
	assert.Contains(t, out, "- Path: '@path'\n")
	assert.Contains(t, out, "- Title\n")
	assert.Contains(t, out, "- field: Field\n")
	assert.Contains(t, out, "required: true\n")
	assert.NotContains(t, out, "kind:")

	back, err := mapping.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, mf, back)
}

func TestLoadFile(t *testing.T) {
	mf, err := mapping.LoadFile(filepath.Join(testdata, "mappings.yaml"))
	require.NoError(t, err)

	assert.Len(t, mf.TypeMappings, 3)
	assert.Equal(t, []mapping.ConverterDef{{Name: "cents", Description: "Amount stored as integer cents"}}, mf.Converters)

	_, err = mapping.LoadFile(filepath.Join(testdata, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read mapping file")
}

func TestLoadGlob(t *testing.T) {
	mf, paths, err := mapping.LoadGlob(
		filepath.Join(testdata, "split", "**", "*.yaml"),
		filepath.Join(testdata, "split", "detail.yaml"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(testdata, "split", "detail.yaml"),
		filepath.Join(testdata, "split", "nested", "main.yaml"),
	}, paths)

	require.Len(t, mf.TypeMappings, 2)
	assert.Equal(t, "testmodel.Detail", mf.TypeMappings[0].Type)
	assert.Equal(t, "ocm-mapper/internal/testmodel.Main", mf.TypeMappings[1].Type)
	assert.Equal(t, "1", mf.Version)

	_, _, err = mapping.LoadGlob(filepath.Join(testdata, "nothing", "*.yaml"))
	assert.ErrorContains(t, err, "no mapping files match")
}

func TestMappingFile_Merge(t *testing.T) {
	a := &mapping.MappingFile{Version: "1", Converters: []mapping.ConverterDef{{Name: "cents"}}}
	b := &mapping.MappingFile{
		Converters:   []mapping.ConverterDef{{Name: "cents"}, {Name: "atoi"}},
		TypeMappings: []mapping.TypeMapping{{Type: "x.Y"}},
	}

	require.NoError(t, a.Merge(b))
	assert.Equal(t, []mapping.ConverterDef{{Name: "cents"}, {Name: "atoi"}}, a.Converters)
	assert.Len(t, a.TypeMappings, 1)

	assert.ErrorContains(t, a.Merge(&mapping.MappingFile{Version: "2"}), "conflicts")
}

func TestWriteFile(t *testing.T) {
	mf, err := mapping.LoadFile(filepath.Join(testdata, "mappings.yaml"))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, mapping.WriteFile(mf, out))

	back, err := mapping.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, mf, back)
}
