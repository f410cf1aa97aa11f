// Package diagnostic provides structured errors, warnings and notes produced
// while checking mapping files against Go source.
//
// Key capabilities:
//   - Unknown type and field reports with "did you mean" suggestions
//   - Conflicting store paths and type tags
//   - Unmapped field notes
package diagnostic
