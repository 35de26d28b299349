package search

import (
	"context"
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"gorm.io/gorm"
)

// Result is an unexecuted query. Nothing is read until Collect.
type Result[T any] struct {
	q         *gorm.DB
	plan      *query.Plan
	normalize func(*T)
}

func newResult[T any](q *gorm.DB, plan *query.Plan, normalize func(*T)) *Result[T] {
	return &Result[T]{q: q.Session(&gorm.Session{}), plan: plan, normalize: normalize}
}

// Plan is the plan the result was built from, or nil if it was not
// planned.
func (r *Result[T]) Plan() *query.Plan { return r.plan }

// SQL renders the query with its variables inlined, for display.
func (r *Result[T]) SQL() string {
	return r.q.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Find(&[]map[string]any{})
	})
}

func (r *Result[T]) Collect(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("canceled: %w", err)
	}
	rows := []T{}
	if err := r.q.WithContext(ctx).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error running query: %w", err)
	}
	if r.normalize != nil {
		for i := range rows {
			r.normalize(&rows[i])
		}
	}
	return rows, nil
}
