package database

import (
	"context"
	"fmt"
	"time"

	"jewelshop/internal/config"

	"github.com/jmoiron/sqlx"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect identifies which of the two interchangeable backends is in use.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// RowLock returns the locking clause appended to SELECTs inside
// read-modify-write transactions. SQLite serializes writers on its own,
// so no clause is needed there.
func (d Dialect) RowLock() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

func (d Dialect) gooseDialect() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Service owns the database handle for the lifetime of the process.
// It is constructed once in main and injected into repositories.
type Service struct {
	db      *sqlx.DB
	dialect Dialect
}

// New opens a connection pool for the configured backend and verifies it.
func New(cfg config.DatabaseConfig) (*Service, error) {
	var (
		db      *sqlx.DB
		dialect Dialect
		err     error
	)

	switch cfg.Driver {
	case "sqlite":
		dialect = DialectSQLite
		db, err = sqlx.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// The embedded backend is a single file; one writer at a time.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	case "postgres":
		dialect = DialectPostgres
		db, err = sqlx.Open("pgx", cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Service{db: db, dialect: dialect}, nil
}

// DB exposes the underlying handle for repositories and migrations.
func (s *Service) DB() *sqlx.DB {
	return s.db
}

// Dialect reports which backend the service was opened against.
func (s *Service) Dialect() Dialect {
	return s.dialect
}

// Health reports basic connectivity and pool statistics.
func (s *Service) Health(ctx context.Context) map[string]string {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	health := map[string]string{
		"driver": string(s.dialect),
	}

	if err := s.db.PingContext(pingCtx); err != nil {
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	stats := s.db.Stats()
	health["status"] = "up"
	health["open_connections"] = fmt.Sprintf("%d", stats.OpenConnections)
	health["in_use"] = fmt.Sprintf("%d", stats.InUse)

	return health
}

// Close releases the connection pool.
func (s *Service) Close() error {
	return s.db.Close()
}
