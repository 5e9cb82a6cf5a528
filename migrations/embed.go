// Package migrations embeds the database schema applied at start-up.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
