package store

import (
	"context"
	"database/sql"
	"fmt"
)

// replaceTable implements replace-semantics loads as a staged swap: rows are
// bulk inserted into a freshly created staging twin, then the live table is
// dropped and the staging table renamed inside the same transaction. Readers
// never observe an empty table, and a failed load leaves the previous rows
// in place.
//
// ddl must contain a single %s for the table name.
func replaceTable(ctx context.Context, db *sql.DB, table, ddl string, fill func(tx *sql.Tx, staging string) error) error {
	staging := table + "_staging"
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", staging)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(ddl, staging)); err != nil {
		tx.Rollback()
		return err
	}
	if err := fill(tx, staging); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", staging, table)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
