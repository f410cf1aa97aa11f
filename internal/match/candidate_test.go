package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	ranked := Rank("Titel", []string{"Path", "Title", "Tags", "Created"})
	require.Len(t, ranked, 4)

	best := ranked.Best()
	require.NotNil(t, best)
	assert.Equal(t, "Title", best.Name)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	assert.Nil(t, CandidateList(nil).Best())
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		names []string
		n     int
		out   []string
	}{
		{name: "typo", want: "Titel", names: []string{"Path", "Title"}, n: 3, out: []string{"Title"}},
		{name: "namespaced", want: "ocm:feild", names: []string{"ocm:field", "jcr:uuid"}, n: 3, out: []string{"ocm:field"}},
		{name: "suffix stripped", want: "OwnerID", names: []string{"Owner", "Other"}, n: 1, out: []string{"Owner"}},
		{name: "nothing close", want: "Zzz", names: []string{"Path", "Title"}, n: 3, out: nil},
		{name: "exact is not a suggestion", want: "Path", names: []string{"Path"}, n: 3, out: nil},
		{name: "limit", want: "Tag", names: []string{"Tags", "Tag1", "Tag2"}, n: 2, out: []string{"Tag1", "Tag2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, Suggest(tt.want, tt.names, tt.n))
		})
	}
}
