package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	var d Diagnostics

	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	d.AddInfo("unmapped_field", "field is not mapped", "testmodel.Main", "Owner")
	d.AddWarning("relation_target_unmapped", "target has no mapping", "testmodel.Main", "Detail")
	d.AddError("field_not_found", `field "Titel" not found`, "testmodel.Main", "Titel", "Title")

	assert.True(t, d.HasErrors())
	assert.Equal(t, []string{"field_not_found", "relation_target_unmapped", "unmapped_field"}, d.Codes())

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		`[testmodel.Main] Titel: [field_not_found] field "Titel" not found (did you mean Title?)`,
		err.Error())

	var other Diagnostics
	other.AddError("x", "y", "", "")
	d.Merge(other)
	assert.Len(t, d.Errors, 2)
	assert.Equal(t, "[x] y", d.Errors[1].String())
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(9).String())
}
