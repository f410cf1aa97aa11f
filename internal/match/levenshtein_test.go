package match

import (
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "title", 5},
		{"title", "title", 0},
		{"title", "titel", 2},
		{"detail", "detial", 2},
		{"ocmfield", "ocmfeild", 2},
		{"friends", "friend", 1},
		{"created", "updated", 3},
		{"uuid", "path", 4},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := distance(tt.a, tt.b); got != tt.expected {
				t.Errorf("distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}

			if got := distance(tt.b, tt.a); got != tt.expected {
				t.Errorf("distance(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.expected)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		want, name string
		min, max   float64
	}{
		// same identifier once normalized
		{"OrderID", "order_id", 1, 1},
		{"ocm:field", "ocmField", 1, 1},
		{"testmodel.Detail", "testmodel.detail", 1, 1},

		// suffix stripping
		{"OwnerID", "Owner", 1, 1},
		{"CreatedAt", "Created", 1, 1},

		// typos worth suggesting
		{"Titel", "Title", MinSuggestScore, 0.99},
		{"testmodel.Detial", "testmodel.Detail", MinSuggestScore, 0.99},
		{"Freinds", "Friends", MinSuggestScore, 0.99},

		// unrelated names
		{"Avatar", "Timeout", 0, MinSuggestScore - 0.01},
		{"cents", "uuid", 0, MinSuggestScore - 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.want+"_"+tt.name, func(t *testing.T) {
			got := Similarity(tt.want, tt.name)
			if got < tt.min || got > tt.max {
				t.Errorf("Similarity(%q, %q) = %f, want in [%f, %f]", tt.want, tt.name, got, tt.min, tt.max)
			}
		})
	}
}

func BenchmarkSimilarity(b *testing.B) {
	for b.Loop() {
		Similarity("testmodel.Detial", "testmodel.Detail")
	}
}
