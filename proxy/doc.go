// Package proxy provides lazy relation handles.
//
// A handle starts Unresolved and holds only the store path(s) of its target.
// The first Get invokes the bound Loader and caches the outcome: a value moves
// the handle to Resolved, an absent target moves it to Null. Both states are
// terminal. A failed load leaves the handle Unresolved so the caller sees the
// error and a later Get tries again.
//
// Ref is the to-one handle and List the to-many handle. Both are safe for
// concurrent use; concurrent first access performs a single load.
package proxy
