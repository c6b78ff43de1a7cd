// Package store provides database access for the gNomi backend.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/gnomiproject/gnomiproject-go/config"
)

// Store wraps the database connection. Postgres (the production,
// Supabase-class store) is used when DATABASE_URL is set; otherwise a local
// SQLite file serves development and tests.
type Store struct {
	Conn        *sql.DB
	UsePostgres bool

	readRetries    int
	readRetryDelay time.Duration
}

// Open creates the database connection, trying Postgres first and falling
// back to SQLite.
func Open() (*Store, error) {
	var conn *sql.DB
	var err error
	var usePostgres bool

	if config.DatabaseURL != "" {
		conn, err = sql.Open("pgx", config.DatabaseURL)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				usePostgres = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(config.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}

		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
		usePostgres = false
	}

	conn.SetMaxOpenConns(config.DBMaxOpenConns)
	conn.SetMaxIdleConns(config.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)

	return &Store{
		Conn:           conn,
		UsePostgres:    usePostgres,
		readRetries:    config.DBReadRetries,
		readRetryDelay: config.DBReadRetryDelay,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.Conn != nil {
		return s.Conn.Close()
	}
	return nil
}

// ConnectionInfo returns a string describing the database connection.
func (s *Store) ConnectionInfo() string {
	if s.UsePostgres {
		return "Postgres"
	}
	return "SQLite"
}

// rebind rewrites ? placeholders to $n for the Postgres driver. Queries in
// this package are written with ? and rebound at execution time.
func (s *Store) rebind(query string) string {
	if !s.UsePostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// queryWithRetry runs an idempotent read with bounded fixed-delay retries.
// Writes never retry; reads are safe to repeat.
func (s *Store) queryWithRetry(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	bound := s.rebind(query)
	var rows *sql.Rows
	var err error

	for attempt := 0; attempt <= s.readRetries; attempt++ {
		rows, err = s.Conn.QueryContext(ctx, bound, args...)
		if err == nil {
			return rows, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < s.readRetries {
			select {
			case <-time.After(s.readRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, err
}

// exec runs a write statement with placeholder rebinding.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.Conn.ExecContext(ctx, s.rebind(query), args...)
}
