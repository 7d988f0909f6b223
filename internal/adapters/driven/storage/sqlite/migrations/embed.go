// Package migrations holds the article store schema, applied in file name
// order when the store opens.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
