package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAddressTable, downCreateAddressTable)
}

func upCreateAddressTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE address (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  country VARCHAR(100) NOT NULL,
	  city VARCHAR(100) NOT NULL,
	  street VARCHAR(200) NOT NULL,
	  street_number VARCHAR(20) NOT NULL,
	  postal_code VARCHAR(20) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateAddressTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS address;`)
	return err
}
