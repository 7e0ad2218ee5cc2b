package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"goldwork/internal/infra"
	"goldwork/migrations"
)

const (
	createVersionsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    text PRIMARY KEY,
	applied_at timestamptz NOT NULL DEFAULT now()
)`
	selectVersions = `SELECT version FROM schema_migrations`
	insertVersion  = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

func main() {
	_ = godotenv.Load()

	var statusFlag bool
	flag.BoolVar(&statusFlag, "status", false, "list pending migrations without applying them")
	flag.Parse()

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}
	logger := infra.NewLogger(os.Getenv("APP_ENV"), "migrate")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open postgres: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deadline := time.Now().Add(30 * time.Second)
	backoff := 500 * time.Millisecond
	for {
		err := db.PingContext(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			exitWithError(fmt.Errorf("failed to ping postgres: %w", err))
		}
		logger.Warn().Err(err).Msg("postgres not ready yet")
		time.Sleep(backoff)
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}

	if _, err := db.ExecContext(ctx, createVersionsTable); err != nil {
		exitWithError(fmt.Errorf("failed to create schema_migrations: %w", err))
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		exitWithError(err)
	}
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		exitWithError(err)
	}
	todo := pending(files, applied)

	if statusFlag {
		for _, name := range todo {
			fmt.Println("pending", name)
		}
		fmt.Printf("%d applied, %d pending\n", len(applied), len(todo))
		return
	}

	for _, name := range todo {
		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			exitWithError(err)
		}
		if err := apply(ctx, db, name, string(body)); err != nil {
			exitWithError(err)
		}
		logger.Info().Str("version", name).Msg("migration applied")
	}
	logger.Info().Int("applied", len(todo)).Msg("schema up to date")
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, selectVersions)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

// pending returns the migration files not yet applied, in lexical order.
func pending(files []string, applied map[string]bool) []string {
	var out []string
	for _, f := range files {
		if !applied[f] {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func apply(ctx context.Context, db *sql.DB, name, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("migration %s failed: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, insertVersion, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return tx.Commit()
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
