// Package migrations embeds the SQL schema migrations so deployments never
// depend on the working directory layout.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
