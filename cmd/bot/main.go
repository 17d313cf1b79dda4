package main

import (
	"context"
	"os/signal"
	"syscall"

	"ecoshop/internal/authapi"
	"ecoshop/internal/config"
	"ecoshop/internal/db"
	"ecoshop/internal/handlers"
	"ecoshop/internal/log"
	"ecoshop/internal/repo"
	"ecoshop/internal/storefront"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Ошибка загрузки конфига")
	}
	log.Configure(log.Config{Level: cfg.LogLevel, Service: "ecoshop-bot"})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//инициализация хранилищ: без DB_NAME всё в памяти
	var (
		sessions storefront.SessionStore = storefront.NewMemorySessions()
		carts    storefront.CartStore    = storefront.NewMemoryCarts()
	)
	if cfg.DBName != "" {
		conn, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Ошибка подключения к PG")
		}
		defer conn.Close()
		sessions = repo.NewSessionRepo(conn)
		carts = repo.NewOrderRepo(conn)
	} else {
		logger.Warn().Msg("DB_NAME not set, sessions and carts are kept in memory")
	}

	auth := authapi.New(cfg.APIBaseURL,
		authapi.WithLoginPath(cfg.APILoginPath),
		authapi.WithTimeout(cfg.APITimeout),
	)
	shop := storefront.New(repo.NewProductRepo(), sessions, carts, auth)

	//создание бота
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Ошибка создания бота")
	}
	bot.Debug = false
	logger.Info().Str("bot", bot.Self.UserName).Str("api", cfg.APIBaseURL).Msg("authorized")

	handlers.HandleUpdates(ctx, bot, shop)
	logger.Info().Msg("bot stopped")
}
