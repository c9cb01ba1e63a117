package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQL is a durable Backend stored in a database/sql table. Any driver
// works; the dialect only changes placeholder and upsert syntax.
// EnsureSchema creates the table:
//
//	CREATE TABLE vuey_records (
//	    record_key   VARCHAR(255) PRIMARY KEY,
//	    record_value TEXT NOT NULL,
//	    updated_at   TIMESTAMP NOT NULL
//	);
type SQL struct {
	db      *sql.DB
	table   string
	dialect SQLDialect
	timeout time.Duration
	now     func() time.Time
}

// SQLDialect selects query syntax.
type SQLDialect int

const (
	// DialectSQLite uses ? placeholders and INSERT OR REPLACE.
	DialectSQLite SQLDialect = iota
	// DialectPostgreSQL uses $n placeholders and ON CONFLICT.
	DialectPostgreSQL
	// DialectMySQL uses ? placeholders and ON DUPLICATE KEY UPDATE.
	DialectMySQL
)

// String returns the dialect name.
func (d SQLDialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectPostgreSQL:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	default:
		return fmt.Sprintf("SQLDialect(%d)", int(d))
	}
}

// SQLOption configures a SQL backend.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	table   string
	dialect SQLDialect
	timeout time.Duration
}

// WithSQLTable sets the table name. Default: "vuey_records".
func WithSQLTable(name string) SQLOption {
	return func(c *sqlConfig) {
		c.table = name
	}
}

// WithSQLDialect sets the SQL dialect. Default: DialectSQLite.
func WithSQLDialect(d SQLDialect) SQLOption {
	return func(c *sqlConfig) {
		c.dialect = d
	}
}

// WithSQLTimeout bounds each query. Default: DefaultTimeout.
func WithSQLTimeout(d time.Duration) SQLOption {
	return func(c *sqlConfig) {
		c.timeout = d
	}
}

// NewSQL creates a SQL backend over db. The caller owns db.
func NewSQL(db *sql.DB, opts ...SQLOption) *SQL {
	cfg := &sqlConfig{
		table:   "vuey_records",
		dialect: DialectSQLite,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &SQL{
		db:      db,
		table:   cfg.table,
		dialect: cfg.dialect,
		timeout: cfg.timeout,
		now:     time.Now,
	}
}

func (s *SQL) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *SQL) placeholder(n int) string {
	if s.dialect == DialectPostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// EnsureSchema creates the records table if it does not exist.
func (s *SQL) EnsureSchema() error {
	ctx, cancel := s.ctx()
	defer cancel()

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			record_key VARCHAR(255) PRIMARY KEY,
			record_value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("persist: create table %s: %w", s.table, err)
	}
	return nil
}

// Get implements Backend.
func (s *SQL) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	query := fmt.Sprintf(`SELECT record_value FROM %s WHERE record_key = %s`, s.table, s.placeholder(1))

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("persist: read %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements Backend.
func (s *SQL) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	var query string
	switch s.dialect {
	case DialectPostgreSQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (record_key, record_value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (record_key) DO UPDATE SET
				record_value = EXCLUDED.record_value,
				updated_at = EXCLUDED.updated_at
		`, s.table)
	case DialectMySQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (record_key, record_value, updated_at)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE
				record_value = VALUES(record_value),
				updated_at = VALUES(updated_at)
		`, s.table)
	default:
		query = fmt.Sprintf(`
			INSERT OR REPLACE INTO %s (record_key, record_value, updated_at)
			VALUES (?, ?, ?)
		`, s.table)
	}

	if _, err := s.db.ExecContext(ctx, query, key, value, s.now().UTC()); err != nil {
		return fmt.Errorf("persist: write %q: %w", key, err)
	}
	return nil
}

// Delete implements Deleter.
func (s *SQL) Delete(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE record_key = %s`, s.table, s.placeholder(1))
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("persist: delete %q: %w", key, err)
	}
	return nil
}

// Keys implements Lister.
func (s *SQL) Keys(prefix string) ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	query := fmt.Sprintf(`SELECT record_key FROM %s ORDER BY record_key`, s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("persist: list: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("persist: list: %w", err)
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, rows.Err()
}
