package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"ecoshop/internal/config"
	"ecoshop/internal/db"
	"ecoshop/internal/log"

	zlog "github.com/rs/zerolog/log"
)

var migrations = []string{
	"001_create_sessions.sql",
	"002_create_orders.sql",
	"003_create_users.sql",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Ошибка конфига")
	}
	log.Configure(log.Config{Level: cfg.LogLevel, Service: "ecoshop-migrations"})

	ctx := context.Background()
	conn, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Ошибка подключения к PG")
	}

	projectRoot, err := getProjectRoot()
	if err != nil {
		conn.Close()
		zlog.Fatal().Err(err).Msg("Ошибка в корневой папке проекта")
	}

	successes := 0
	for _, migration := range migrations {
		migrationPath := filepath.Join(projectRoot, "migrations", migration)
		if err := Migrate(ctx, conn, migrationPath); err != nil {
			zlog.Error().Err(err).Str("migration", migration).Msg("migration failed")
			continue
		}
		zlog.Info().Str("migration", migration).Msg("migration applied")
		successes++
	}
	conn.Close()
	zlog.Info().Int("applied", successes).Int("total", len(migrations)).Msg("migrations done")
	if successes != len(migrations) {
		os.Exit(1)
	}
}

// Migrate runs one SQL file. Every file is idempotent, so a rerun is safe.
func Migrate(ctx context.Context, db *sql.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}

func getProjectRoot() (string, error) {
	// Ищем корень проекта по наличию go.mod
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}

		parent := filepath.Dir(wd)
		if parent == wd {
			return "", os.ErrNotExist
		}
		wd = parent
	}
}
