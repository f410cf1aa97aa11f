// Package match provides name normalization, Levenshtein distance calculation
// and candidate ranking for "did you mean" suggestions.
//
// Key functions:
//   - NormalizeIdent: normalizes Go identifiers and store names for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Rank, Suggest: rank known names against a misspelled one
package match
