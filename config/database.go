package config

import (
	"fmt"
	"time"

	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// GormConfig is shared by every connection so timestamps are always
// written in UTC regardless of driver.
func GormConfig(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.NewGormLogger(level, 200*time.Millisecond),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// ConnectDatabase opens the database named by cfg and stores it for GetDB
func ConnectDatabase(cfg *Config) error {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, GormConfig(level))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	logger.L().Info("database connection established", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

// AutoMigrate creates or updates the schema for every model. Parents are
// listed before children so foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance (tests inject sqlite)
func SetDB(db *gorm.DB) {
	DB = db
}
