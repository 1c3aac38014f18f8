package db

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver interface
// ─────────────────────────────────────────────────────────────────────────────

// Driver encapsulates database-specific behaviour:
//   - building a DSN from structured options
//   - picking the SQL dialect
//   - providing a driver-specific ErrorMapper
//
// The database/sql drivers themselves register through blank imports in the
// executables (and tests), so the adapters here stay import-free.
type Driver interface {
	// Name returns the name passed to sql.Register, e.g. "pgx", "mysql".
	Name() string

	// DSN converts structured options into a driver DSN string.
	DSN(opts DriverOptions) (string, error)

	// Dialect returns the SQL dialect spoken by the driver.
	Dialect() Dialect

	// ErrorMapper returns a mapper tuned to this driver's error types.
	ErrorMapper() ErrorMapper
}

// DriverOptions carries the common connection parameters in a structured,
// driver-agnostic form. DSN() converts them to the driver's native format.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "require", "verify-full", etc.
	// Extra holds driver-specific key/value parameters.
	Extra map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver registry
// ─────────────────────────────────────────────────────────────────────────────

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds a Driver to the registry. It panics when the name is
// already taken.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[d.Name()]; ok {
		panic(fmt.Sprintf("db: driver %q already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver opens a DB using a registered Driver and structured options.
//
//	d, err := db.OpenWithDriver("postgres", db.DriverOptions{
//	    Host: "localhost", Port: 5432,
//	    User: "postgres", Password: "1234", Database: "api-learning",
//	}, db.Config{MaxOpenConns: 10})
func OpenWithDriver(driverName string, driverOpts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}

	dsn, err := drv.DSN(driverOpts)
	if err != nil {
		return nil, fmt.Errorf("db: DSN construction failed: %w", err)
	}

	cfg.DriverName = drv.Name()
	cfg.DSN = dsn
	if cfg.Dialect == nil {
		cfg.Dialect = drv.Dialect()
	}

	d, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	d.SetErrorMapper(ChainMapper(drv.ErrorMapper(), DefaultErrorMapper()))
	return d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL adapters (lib/pq and pgx stdlib share the keyword/value DSN)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver is the lib/pq adapter.
type PostgresDriver struct{}

func (PostgresDriver) Name() string                        { return "postgres" }
func (PostgresDriver) DSN(o DriverOptions) (string, error) { return keywordDSN(o) }
func (PostgresDriver) Dialect() Dialect                    { return Postgres }
func (PostgresDriver) ErrorMapper() ErrorMapper            { return DefaultErrorMapper() }

// PgxDriver is the github.com/jackc/pgx/v5/stdlib adapter.
type PgxDriver struct{}

func (PgxDriver) Name() string                        { return "pgx" }
func (PgxDriver) DSN(o DriverOptions) (string, error) { return keywordDSN(o) }
func (PgxDriver) Dialect() Dialect                    { return Postgres }
func (PgxDriver) ErrorMapper() ErrorMapper            { return DefaultErrorMapper() }

func keywordDSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + quoteKeyword(o.Host),
		fmt.Sprintf("port=%d", port),
		"user=" + quoteKeyword(o.User),
		"password=" + quoteKeyword(o.Password),
		"dbname=" + quoteKeyword(o.Database),
		"sslmode=" + quoteKeyword(sslMode),
	}
	for _, k := range sortedKeys(o.Extra) {
		parts = append(parts, k+"="+quoteKeyword(o.Extra[k]))
	}
	return strings.Join(parts, " "), nil
}

// quoteKeyword quotes a keyword/value DSN value when it is empty or
// contains spaces, quotes or backslashes.
func quoteKeyword(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// ─────────────────────────────────────────────────────────────────────────────
// MySQL adapter
// ─────────────────────────────────────────────────────────────────────────────

// MySQLDriver is the go-sql-driver/mysql adapter. parseTime is always on;
// multiStatements is needed only by cmd/migrate.
type MySQLDriver struct{}

func (MySQLDriver) Name() string { return "mysql" }

func (MySQLDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("mysql driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 3306
	}
	q := url.Values{}
	q.Set("parseTime", "true")
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		o.User, o.Password, o.Host, port, o.Database, q.Encode()), nil
}

func (MySQLDriver) Dialect() Dialect         { return MySQL }
func (MySQLDriver) ErrorMapper() ErrorMapper { return DefaultErrorMapper() }

// ─────────────────────────────────────────────────────────────────────────────
// SQLite adapter
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver is the mattn/go-sqlite3 adapter. Database is the file path
// (or ":memory:").
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string { return "sqlite3" }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	params := make([]string, 0, len(o.Extra))
	for _, k := range sortedKeys(o.Extra) {
		params = append(params, k+"="+o.Extra[k])
	}
	return o.Database + "?" + strings.Join(params, "&"), nil
}

func (SQLiteDriver) Dialect() Dialect         { return SQLite }
func (SQLiteDriver) ErrorMapper() ErrorMapper { return DefaultErrorMapper() }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	RegisterDriver(PostgresDriver{})
	RegisterDriver(PgxDriver{})
	RegisterDriver(MySQLDriver{})
	RegisterDriver(SQLiteDriver{})
}
