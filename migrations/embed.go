// README: SQL schema migrations embedded into the binary and applied at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
