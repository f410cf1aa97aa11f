// Package store holds the node.Store adapters:
//   - memstore: in-process map, for tests and fixtures
//   - sqlitestore: one SQLite table via modernc.org/sqlite
//   - kvstore: a NATS JetStream key-value bucket
//
// Every adapter stores node.Node values, bumps Version on Save and reports
// absence with an error wrapping node.ErrNotFound.
package store
