// Package migrations holds the schema as goose Go migrations.  Each file
// registers itself in init; the sources are embedded so goose can list them
// regardless of the working directory.
package migrations

import "embed"

//go:embed *.go
var FS embed.FS
