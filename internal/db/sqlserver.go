package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// SQLServerClient manages the connection to SQL Server
type SQLServerClient struct {
	db       *sql.DB
	database string
}

// NewSQLServerClient creates a new SQL Server client
func NewSQLServerClient(ctx context.Context, connString string) (*SQLServerClient, error) {
	// Validate DSN early to fail fast on obvious mistakes.
	cfg, err := msdsn.Parse(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid SQL Server DSN: %w", err)
	}

	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLServerClient{db: db, database: cfg.Database}, nil
}

// Close closes the database connection
func (c *SQLServerClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLServerClient) GetDB() *sql.DB {
	return c.db
}

// Database returns the database named in the connection string
func (c *SQLServerClient) Database() string {
	return c.database
}
