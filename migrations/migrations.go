// Package migrations embeds the versioned schema for every supported
// dialect. Each up file is written with IF NOT EXISTS so that it can be
// replayed directly against an initialized store as well as driven by
// golang-migrate.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql mysql/*.sql sqlite3/*.sql
var FS embed.FS

// UpStatements returns the statements of every up migration for dialect,
// in version order.
func UpStatements(dialect string) ([]string, error) {
	files, err := fs.Glob(FS, dialect+"/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: glob %s: %w", dialect, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("migrations: no migrations for dialect %q", dialect)
	}
	sort.Strings(files)

	var stmts []string
	for _, name := range files {
		raw, err := fs.ReadFile(FS, name)
		if err != nil {
			return nil, fmt.Errorf("migrations: read %s: %w", name, err)
		}
		stmts = append(stmts, split(string(raw))...)
	}
	return stmts, nil
}

// split breaks a migration file into statements. The schema has no
// semicolons inside literals, so a plain split is enough.
func split(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
