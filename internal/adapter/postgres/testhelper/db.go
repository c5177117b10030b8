// Package testhelper gives each integration test its own migrated
// PostgreSQL database.
package testhelper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres/migrations"
	"github.com/heartmarshall/spiral-worksheets/internal/config"
)

// ExternalDSNEnv points the helper at an existing server instead of a
// container. The DSN's user must be allowed to create databases.
const ExternalDSNEnv = "TEST_DATABASE_DSN"

var (
	serverOnce sync.Once
	serverDSN  string
	serverErr  error
)

// SetupTestDB creates a fresh database on the shared test server, applies
// the run log migrations and returns a pool built by postgres.NewPool.
// The database is dropped in t.Cleanup. Skipped under -short.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("testhelper: skipping PostgreSQL integration test in -short mode")
	}

	serverOnce.Do(func() {
		if dsn := os.Getenv(ExternalDSNEnv); dsn != "" {
			serverDSN = dsn
			return
		}
		serverDSN, serverErr = startContainer()
	})
	if serverErr != nil {
		t.Fatalf("testhelper: start postgres: %v", serverErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := "runlog_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := adminExec(ctx, "CREATE DATABASE "+name); err != nil {
		t.Fatalf("testhelper: create database: %v", err)
	}
	t.Cleanup(func() {
		dropCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := adminExec(dropCtx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)"); err != nil {
			t.Logf("testhelper: drop database %s: %v", name, err)
		}
	})

	dsn, err := withDatabase(serverDSN, name)
	if err != nil {
		t.Fatalf("testhelper: %v", err)
	}

	pool, err := postgres.NewPool(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	if err != nil {
		t.Fatalf("testhelper: %v", err)
	}
	t.Cleanup(pool.Close)

	// goose requires *sql.DB.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := migrations.Up(ctx, db, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("testhelper: migrate: %v", err)
	}

	return pool
}

func adminExec(ctx context.Context, sql string) error {
	conn, err := pgx.Connect(ctx, serverDSN)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, sql)
	return err
}

func withDatabase(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	u.Path = "/" + name
	return u.String(), nil
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "spiral",
				"POSTGRES_PASSWORD": "spiral",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://spiral:spiral@%s:%s/postgres?sslmode=disable", host, port.Port()), nil
}
