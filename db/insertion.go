package db

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"
)

// insertBatchSize keeps each insert statement under sqlite's variable limit
// for the widest row type.
const insertBatchSize = 500

// Insert writes rows into the named table. Rows whose primary key already
// exists are skipped, so the first row written for a key wins.
func Insert[T any](ctx context.Context, db *DB, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).
		Table(table).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, insertBatchSize).
		Error; err != nil {
		return fmt.Errorf("error inserting %d rows into '%s': %w", len(rows), table, err)
	}
	return nil
}

// ExecStep runs a build statement, wrapping failures with a description of the
// step.
func (db *DB) ExecStep(ctx context.Context, step string, sql string, vars ...any) error {
	if err := db.WithContext(ctx).Exec(sql, vars...).Error; err != nil {
		return fmt.Errorf("error %s: %w", step, err)
	}
	return nil
}
