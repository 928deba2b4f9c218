// Package postgres opens the pooled database connection used for run history.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/searchlabs/docluster/pkg/config"
)

// Client wraps the run-history database handle.
type Client struct {
	DB *sql.DB
}

// Connect opens a pooled connection and verifies it with a ping so a
// misconfigured database fails the run up front rather than at the first
// insert. The caller owns the client and must Close it.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.DB.Close()
}
