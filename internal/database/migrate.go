package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/iliyamo/postboard/internal/database/migrations"
)

// Migrate runs a goose command ("up", "down", "status", ...) against db using
// the Go migrations registered by the migrations package.
func Migrate(ctx context.Context, db *sql.DB, command string) error {
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	if command == "" {
		command = "up"
	}
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
