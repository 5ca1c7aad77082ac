package database

import (
	"github.com/veritrace/veritrace/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique-violation errors surface as gorm.ErrDuplicatedKey so the
		// repositories can map them to their own sentinels.
		TranslateError: true,
	})
}
