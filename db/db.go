// Package db provides database connectivity for the todoapp backend.
// It establishes the pgx connection pool and creates the schema at startup.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/todoapp-go/apperror"
	"github.com/user/todoapp-go/config"
)

// NewPool establishes a connection pool to PostgreSQL using the provided
// configuration. The pool is configured with max connections, idle time and
// lifetime limits, and the connection is verified with a ping before the
// pool is returned.
func NewPool(cfg *config.PoolConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", cfg.DBName), err)
	}

	return pool, nil
}

// schemaStatements is the idempotent DDL applied at startup. The unique
// constraint on users.email is the authoritative guard against duplicate
// registrations; the application-level existence check is only an
// optimization.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGSERIAL PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users (id),
		title       TEXT NOT NULL,
		description TEXT,
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
}

// EnsureSchema creates the users and tasks tables if they do not exist yet.
// Every statement is idempotent, so running it on every startup is safe,
// including against databases where the tables are pre-created.
func EnsureSchema(pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := pool.Exec(ctx, stmt)
		cancel()
		if err != nil {
			return apperror.NewDatabaseError("failed to create schema", err)
		}
	}
	return nil
}
