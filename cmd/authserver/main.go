package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ecoshop/internal/authserver"
	"ecoshop/internal/config"
	"ecoshop/internal/db"
	"ecoshop/internal/log"
	"ecoshop/internal/repo"

	zlog "github.com/rs/zerolog/log"
)

const loginLimit = 10 // попыток входа в минуту с одного IP

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Ошибка загрузки конфига")
	}
	log.Configure(log.Config{Level: cfg.LogLevel, Service: "ecoshop-auth"})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var users authserver.UserStore = authserver.NewMemoryStore()
	if cfg.DBName != "" {
		conn, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Ошибка подключения к PG")
		}
		defer conn.Close()
		users = repo.NewUserRepo(conn)
	} else {
		logger.Warn().Msg("DB_NAME not set, accounts are kept in memory")
	}

	api := authserver.New(users, authserver.Config{
		JWT:        authserver.JWTConfig{SecretKey: cfg.JWTSecret, TokenDuration: cfg.JWTTTL},
		LoginLimit: loginLimit,
	})
	srv := &http.Server{
		Addr:              cfg.AuthAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("addr", cfg.AuthAddr).Msg("auth server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("listen")
	}
	logger.Info().Msg("auth server stopped")
}
