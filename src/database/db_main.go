package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"signalrelay/src/model"
)

// MainDB is the audit database shared by the repositories. It stays nil when ENABLE_DB is false.
var MainDB *gorm.DB

// Dialector picks the gorm driver from the URL scheme.
func Dialector(url string) gorm.Dialector {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return postgres.Open(url)
	}
	return sqlite.Open(url)
}

// Open connects to url and migrates the audit schema.
func Open(url string, gormLogLevel int) (*gorm.DB, error) {
	db, err := gorm.Open(Dialector(url),
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(gormLogLevel)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables the relay writes to.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.TradeEvent{},
		&model.WebhookAlert{},
		&model.Exception{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InitMainDB opens MainDB when ENABLE_DB is set. It should be called once at startup.
func InitMainDB() error {
	config := GetConfig()
	if !config.EnableDB {
		logrus.Info("[database] ENABLE_DB=false, trade events are not persisted")
		return nil
	}

	db, err := Open(config.DatabaseURL, config.GormLogLevel)
	if err != nil {
		return err
	}

	MainDB = db
	logrus.Info("[database] MainDB connection established and migrated")
	return nil
}

// Close releases the MainDB connection pool, if any.
func Close() error {
	if MainDB == nil {
		return nil
	}
	sqlDB, err := MainDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
