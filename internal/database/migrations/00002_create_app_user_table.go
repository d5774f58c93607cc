package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAppUserTable, downCreateAppUserTable)
}

func upCreateAppUserTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE app_user (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  role VARCHAR(32) NOT NULL DEFAULT 'USER',
	  first_name VARCHAR(100) NOT NULL,
	  last_name VARCHAR(100) NOT NULL,
	  email_address VARCHAR(255) NOT NULL UNIQUE,
	  password VARCHAR(255) NOT NULL,
	  date_of_birth DATE NULL,
	  address CHAR(36) NULL,
	  CONSTRAINT fk_app_user_address FOREIGN KEY (address) REFERENCES address (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateAppUserTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS app_user;`)
	return err
}
