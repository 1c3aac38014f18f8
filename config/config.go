// Package config reads the process configuration from the environment,
// after loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/ingest"
	"github.com/Skryldev/placeholder-sync/source"
)

// Config is everything cmd/syncd needs to start.
type Config struct {
	// DatabaseURL, when set, is the golang-migrate style URL shared with
	// cmd/migrate; DBConfig turns it into the driver's DSN. Otherwise the
	// DSN is built from DB by the driver registry.
	DatabaseURL    string
	DBDriver       string
	DB             db.DriverOptions
	DBMaxOpenConns int
	DBQueryTimeout time.Duration

	HTTPAddr string

	SourceBaseURL string
	SourceTimeout time.Duration

	Ingest          ingest.Options
	IngestOnStartup bool

	CascadePostDelete bool

	LogLevel   slog.Level
	LogSQLArgs bool
}

// Load reads files (".env" when none are given) into the environment
// without overriding variables already set, then parses the environment.
// Missing files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv parses the configuration through lookup. Every invalid variable
// is reported, not only the first.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}

	cfg := Config{
		DatabaseURL: e.str("DATABASE_URL", ""),
		DBDriver:    e.str("DB_DRIVER", "postgres"),
		DB: db.DriverOptions{
			Host:     e.str("DB_HOST", "localhost"),
			Port:     e.integer("DB_PORT", 0),
			User:     e.str("DB_USER", "postgres"),
			Password: e.str("DB_PASSWORD", "1234"),
			Database: e.str("DB_NAME", "api-learning"),
			SSLMode:  e.str("DB_SSLMODE", "disable"),
		},
		DBMaxOpenConns: e.integer("DB_MAX_OPEN_CONNS", 10),
		DBQueryTimeout: e.duration("DB_QUERY_TIMEOUT", 10*time.Second),

		HTTPAddr: e.str("HTTP_ADDR", "127.0.0.1:8000"),

		SourceBaseURL: e.str("SOURCE_BASE_URL", source.DefaultBaseURL),
		SourceTimeout: e.duration("SOURCE_TIMEOUT", 10*time.Second),

		Ingest: ingest.Options{
			PostLimit:    e.integer("INGEST_POST_LIMIT", source.DefaultPostLimit),
			UserLimit:    e.integer("INGEST_USER_LIMIT", source.DefaultUserLimit),
			CommentLimit: e.integer("INGEST_COMMENT_LIMIT", source.DefaultCommentLimit),
			Upsert:       e.flag("INGEST_UPSERT", true),
		},
		IngestOnStartup: e.flag("INGEST_ON_STARTUP", true),

		CascadePostDelete: e.flag("CASCADE_POST_DELETE", true),

		LogLevel:   e.level("LOG_LEVEL", slog.LevelInfo),
		LogSQLArgs: e.flag("LOG_SQL_ARGS", false),
	}

	if _, err := db.LookupDriver(cfg.DBDriver); err != nil {
		e.fail("DB_DRIVER", cfg.DBDriver, err)
	}
	e.positive("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	e.positive("INGEST_POST_LIMIT", cfg.Ingest.PostLimit)
	e.positive("INGEST_USER_LIMIT", cfg.Ingest.UserLimit)
	e.positive("INGEST_COMMENT_LIMIT", cfg.Ingest.CommentLimit)

	if err := errors.Join(e.errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// DBConfig returns the pool settings for db.Open / db.OpenWithDriver.
func (c Config) DBConfig(hooks ...db.Hook) db.Config {
	return db.Config{
		DSN:             driverDSN(c.DBDriver, c.DatabaseURL),
		DriverName:      c.DBDriver,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxOpenConns / 2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		DefaultTimeout:  c.DBQueryTimeout,
		Hooks:           hooks,
	}
}

// driverDSN strips the migrate-only schemes that go-sql-driver/mysql and
// mattn/go-sqlite3 do not accept, and maps pgx5:// onto postgres://.
func driverDSN(driver, dbURL string) string {
	scheme, rest, ok := strings.Cut(dbURL, "://")
	if !ok {
		return dbURL
	}
	switch {
	case driver == "mysql" && scheme == "mysql":
		return rest
	case (driver == "sqlite3" || driver == "sqlite") && (scheme == "sqlite3" || scheme == "sqlite"):
		return rest
	case scheme == "pgx5":
		return "postgres://" + rest
	}
	return dbURL
}

// ── Parsing ──────────────────────────────────────────────────────────────────

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (e *env) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *env) flag(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	if d < 0 {
		e.fail(key, v, errors.New("must not be negative"))
		return def
	}
	return d
}

func (e *env) level(key string, def slog.Level) slog.Level {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		e.fail(key, v, err)
		return def
	}
	return l
}

func (e *env) positive(key string, n int) {
	if n <= 0 {
		e.fail(key, strconv.Itoa(n), errors.New("must be positive"))
	}
}
