package database

import "embed"

// EmbeddedMigrations holds the SQL files under migrations/ so the
// deployed binary carries its own schema. Access the subtree with
// fs.Sub(EmbeddedMigrations, "migrations").
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS
