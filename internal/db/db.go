package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/apexmark/campaign-console/internal/config"
)

// Open connects to Postgres and verifies the connection. The returned handle
// is injected into repositories; callers own its lifecycle and must Close it
// on shutdown.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxConns)
	conn.SetMaxIdleConns(cfg.MaxIdle)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return conn, nil
}
