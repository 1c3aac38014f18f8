package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/migrations"
)

// CreateSchema creates the posts, users and comments tables with their
// indexes when they are absent. It replays the embedded up migrations for
// q's dialect and is safe to run against an initialized store.
func CreateSchema(ctx context.Context, q db.Querier) error {
	stmts, err := migrations.UpStatements(q.Dialect().Name())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("repo: create schema: %w", err)
		}
	}
	return nil
}
