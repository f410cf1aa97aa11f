package match

import (
	"sort"

	"ocm-mapper/utils"
)

// MinSuggestScore is the similarity a candidate needs to be suggested.
const MinSuggestScore = 0.6

// Candidate is a known name scored against a wanted one.
type Candidate struct {
	Name  string
	Score float64 // normalized similarity (0-1)
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank scores every name against want and returns them best first.
func Rank(want string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))

	for _, name := range names {
		candidates = append(candidates, Candidate{Name: name, Score: Similarity(want, name)})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to n names similar enough to want, best first.
func Suggest(want string, names []string, n int) []string {
	var out []string

	for _, c := range Rank(want, names) {
		if len(out) == n {
			break
		}

		if utils.IsInRange(MinSuggestScore, c.Score, 1) && c.Name != want {
			out = append(out, c.Name)
		}
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Less implements sort.Interface (descending by score, then by name).
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Best returns the top candidate, or nil if empty.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}
