// Package migrations embeds the SQL schema for the summary archive.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
