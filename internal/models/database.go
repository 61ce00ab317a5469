package models

import (
	"fmt"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. debug enables SQL logging.
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// usersTableOptions returns the CREATE TABLE options that keep username
// comparisons case-sensitive on dialect. MySQL collations default to
// case-insensitive, which would make "Alice" collide with "alice".
func usersTableOptions(dialect string) string {
	if dialect == "mysql" {
		return "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"
	}
	return ""
}

func AutoMigrate(db *gorm.DB) error {
	users := db
	if opts := usersTableOptions(db.Dialector.Name()); opts != "" {
		users = db.Set("gorm:table_options", opts)
	}
	if err := users.AutoMigrate(&User{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&RefreshToken{},
		&SystemLog{},
	)
}
