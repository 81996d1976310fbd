package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/cache"
	"github.com/dichenko/myshadow/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Notifier, Logger).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Notifier   notify.Notifier
	Logger     *slog.Logger
}

// New creates a new AppContext.
func New(db *gorm.DB, rdb *cache.RedisCache, notifier notify.Notifier, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Notifier:   notifier,
		Logger:     logger,
	}
}
