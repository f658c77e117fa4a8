package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/vitalislabs/vitalis/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Module = fx.Module("db",
	fx.Provide(Open),
)

func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.DB.Driver {
	case "postgres":
		conn, err = gorm.Open(postgres.Open(cfg.DB.DSN), gormCfg)
	case "sqlite", "":
		conn, err = gorm.Open(sqlite.Open(cfg.DB.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Named("db").Info("database connected", zap.String("driver", cfg.DB.Driver))
	return conn, nil
}
