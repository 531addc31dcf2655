package migrations

import "embed"

// FS contains embedded SQLite migrations for preferences storage.
//
//go:embed *.sql
var FS embed.FS
