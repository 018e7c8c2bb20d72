// Package sqlstore implements the user, OTP and profile repositories on a
// relational database through gorm. Postgres is the production driver;
// SQLite serves local runs and tests.
package sqlstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-blog-auth/internal/config"
	"github.com/go-blog-auth/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with the driver named by cfg.DBDriver and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.DBDriver)
	}

	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the users, otps and profiles tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &otpModel{}, &profileModel{})
}

// translate maps gorm's not-found and unique-violation errors to domain kinds.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", entity, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", entity, domain.ErrConflict)
	}
	return err
}
