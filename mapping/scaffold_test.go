package mapping_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm-mapper/mapping"
)

func TestScaffold_MatchesHandWrittenMappings(t *testing.T) {
	graph := loadGraph(t)

	want, err := mapping.LoadFile(filepath.Join(testdata, "mappings.yaml"))
	require.NoError(t, err)

	mf, diags := mapping.Scaffold(graph, "ocm:", "testmodel.Main", "testmodel.Detail")
	require.True(t, diags.IsValid(), diags.Error())
	assert.Empty(t, diags.Warnings)

	assert.Equal(t, want.TypeMappings[:2], mf.TypeMappings)
}

func TestScaffold_Person(t *testing.T) {
	graph := loadGraph(t)

	mf, diags := mapping.Scaffold(graph, "ocm:", "testmodel.Person")
	require.True(t, diags.IsValid(), diags.Error())
	require.Len(t, mf.TypeMappings, 1)

	tm := mf.TypeMappings[0]
	assert.Equal(t, "ocm:person", tm.JcrType)

	var fields []string
	for _, fd := range tm.Fields {
		fields = append(fields, fd.Field)
	}

	assert.Equal(t, []string{"Path", "ID", "Name", "Age", "Status", "Timeout", "Friends", "Avatar"}, fields)
	assert.Equal(t, mapping.FieldDef{Field: "ID", Kind: mapping.KindUUID}, tm.Fields[1])

	require.Len(t, diags.Infos, 1)
	assert.Equal(t, "skipped_field", diags.Infos[0].Code)
	assert.Equal(t, "Cents", diags.Infos[0].Field)

	checked := mapping.Validate(mf, graph)
	assert.True(t, checked.IsValid(), checked.Error())
}

func TestScaffold_Errors(t *testing.T) {
	graph := loadGraph(t)

	tests := []struct {
		name string
		id   string
		code string
	}{
		{"unknown type", "testmodel.Mian", "type_not_found"},
		{"not a struct", "testmodel.Status", "type_not_struct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mf, diags := mapping.Scaffold(graph, "ocm:", tt.id)
			assert.Empty(t, mf.TypeMappings)
			require.Len(t, diags.Errors, 1)
			assert.Equal(t, tt.code, diags.Errors[0].Code)
		})
	}
}

func TestScaffold_MissingIdentity(t *testing.T) {
	graph := loadGraph(t)

	_, diags := mapping.Scaffold(graph, "x:", "testmodel.Amount")
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, "missing_identity", diags.Warnings[0].Code)
}
