// Package migrations embeds the SQLite schema of sqlitestore.
package migrations

import "embed"

// FS contains embedded SQLite migrations for the node table.
//
//go:embed *.sql
var FS embed.FS
