package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"insurance-portal/internal/domain/session"
)

// OpenGorm connects with the named driver ("sqlite" or "mysql").
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "mysql":
		return OpenGormWithDialector(mysql.Open(dsn))
	case "sqlite", "":
		return OpenGormWithDialector(sqlite.Open(dsn))
	}
	return nil, fmt.Errorf("gorm: unsupported driver %q", driver)
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	slog.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}

// Migrate creates or updates the tables the portal owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&session.Session{})
}
