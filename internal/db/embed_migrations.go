package db

import "embed"

// MigrationFS embeds the SQL migrations in internal/db/migrations. Used by internal/db/migrate and cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
