// Package migrations embeds the lead store schema for cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
