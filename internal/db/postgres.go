package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecoshop/internal/config"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DSN builds the lib/pq connection string from the configuration.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBSSLMode,
	)
}

func NewPostgresDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		log.Error().Err(err).Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("Ошибка подключения к PG")
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("Подключение к PG")
	return db, nil
}
