// Package migrations embeds the SQL schema so the service can migrate without
// shipping the directory alongside the binary.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
