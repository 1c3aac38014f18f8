package db_test

import (
	"testing"

	"github.com/Skryldev/placeholder-sync/db"
)

func TestDialectFor(t *testing.T) {
	cases := map[string]db.Dialect{
		"postgres": db.Postgres,
		"pgx":      db.Postgres,
		"mysql":    db.MySQL,
		"sqlite3":  db.SQLite,
		"sqlite":   db.SQLite,
	}
	for name, want := range cases {
		if got := db.DialectFor(name); got != want {
			t.Errorf("DialectFor(%q) = %s, want %s", name, got.Name(), want.Name())
		}
	}
}

func TestRebind(t *testing.T) {
	cases := []struct {
		name    string
		dialect db.Dialect
		in      string
		want    string
	}{
		{"postgres", db.Postgres,
			`DELETE FROM comments WHERE post_id IN (?, ?, ?)`,
			`DELETE FROM comments WHERE post_id IN ($1, $2, $3)`},
		{"quoted marks stay", db.Postgres,
			`SELECT '?' AS q, id FROM posts WHERE post_id = ?`,
			`SELECT '?' AS q, id FROM posts WHERE post_id = $1`},
		{"no placeholders", db.Postgres, `SELECT 1`, `SELECT 1`},
		{"sqlite untouched", db.SQLite,
			`SELECT id FROM posts WHERE post_id = ?`,
			`SELECT id FROM posts WHERE post_id = ?`},
		{"mysql untouched", db.MySQL,
			`SELECT id FROM posts WHERE post_id = ?`,
			`SELECT id FROM posts WHERE post_id = ?`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := db.Rebind(tc.dialect, tc.in); got != tc.want {
				t.Errorf("Rebind = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	updates := []string{"user_id", "title"}
	cases := []struct {
		dialect db.Dialect
		want    string
	}{
		{db.Postgres, ` ON CONFLICT (post_id) DO UPDATE SET user_id = EXCLUDED.user_id, title = EXCLUDED.title`},
		{db.SQLite, ` ON CONFLICT (post_id) DO UPDATE SET user_id = excluded.user_id, title = excluded.title`},
		{db.MySQL, ` ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), user_id = VALUES(user_id), title = VALUES(title)`},
	}
	for _, tc := range cases {
		if got := tc.dialect.Upsert("post_id", updates); got != tc.want {
			t.Errorf("%s: Upsert = %q, want %q", tc.dialect.Name(), got, tc.want)
		}
	}
	if got := db.Postgres.Upsert("post_id", nil); got != ` ON CONFLICT (post_id) DO NOTHING` {
		t.Errorf("Upsert without updates = %q", got)
	}
}

func TestReturningSupport(t *testing.T) {
	if !db.Postgres.UseReturning() || !db.SQLite.UseReturning() || db.MySQL.UseReturning() {
		t.Error("only MySQL should fall back to LastInsertId")
	}
}
