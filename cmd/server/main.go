package main

import (
	"context"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/cache"
	"github.com/dichenko/myshadow/internal/config"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/logger"
	"github.com/dichenko/myshadow/internal/notify"
	"github.com/dichenko/myshadow/internal/server"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Partner notifications go through the bot when a token is set;
	// without one they are silently dropped.
	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken)
		if err != nil {
			log.Error("failed to init telegram bot", "err", err)
			return
		}
		notifier = tg
	} else {
		log.Warn("BOT_TOKEN not set, partner notifications disabled")
	}

	appCtx := app.New(database, redisCache, notifier, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	srv, err := server.New(appCtx, cfg)
	if err != nil {
		log.Error("failed to build server", "err", err)
		return
	}
	if err := srv.Start(); err != nil {
		log.Error("server exited", "err", err)
	}
}
