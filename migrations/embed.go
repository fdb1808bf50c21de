// Package migrations provides embedded SQL migrations for Goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
