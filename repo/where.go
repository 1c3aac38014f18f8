package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skryldev/placeholder-sync/db"
)

// deletable lists the indexed columns DeleteWhere accepts per table.
// Identifiers cannot be bound as parameters, so anything else is refused.
var deletable = map[string]map[string]bool{
	"posts":    {"id": true, "post_id": true},
	"users":    {"id": true, "user_id": true},
	"comments": {"id": true, "post_id": true, "source_id": true},
}

// DeleteWhere removes every row of table whose column matches one of values
// and returns the number of rows removed. An empty values list removes
// nothing and sends no statement.
//
//	repo.DeleteWhere(ctx, tx, "comments", "post_id", 1, 2) // DELETE FROM comments WHERE post_id IN (?, ?)
func DeleteWhere(ctx context.Context, q db.Querier, table, column string, values ...any) (int64, error) {
	if !deletable[table][column] {
		return 0, fmt.Errorf("repo: delete from %s by %q is not allowed", table, column)
	}
	if len(values) == 0 {
		return 0, nil
	}
	clause, args := in(column, values)
	res, err := q.Exec(ctx, "DELETE FROM "+table+" WHERE "+clause, args...)
	if err != nil {
		return 0, fmt.Errorf("repo: delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repo: delete from %s: rows affected: %w", table, err)
	}
	return n, nil
}

// in expands values into "column IN (?, ?, ...)".
func in[T any](column string, values []T) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return column + " IN (" + marks + ")", args
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// insertID runs an INSERT and returns the surrogate id, through RETURNING
// where the dialect has it and LastInsertId otherwise.
func insertID(ctx context.Context, q db.Querier, query string, args ...any) (int64, error) {
	if q.Dialect().UseReturning() {
		var id int64
		if err := q.QueryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// scanner is satisfied by both *db.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
