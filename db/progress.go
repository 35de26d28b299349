package db

import (
	"context"
	"fmt"
)

func (db *DB) CountRows(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).
		Table(table).
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("error counting %s: %w", table, err)
	}
	return count, nil
}

// CountDistinct counts the distinct values of expr over the rows of the
// given table expression.
func (db *DB) CountDistinct(ctx context.Context, from, expr string) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).
		Table(from).
		Select("count(distinct " + expr + ")").
		Scan(&count).
		Error; err != nil {
		return 0, fmt.Errorf("error counting distinct %s in %s: %w", expr, from, err)
	}
	return count, nil
}
