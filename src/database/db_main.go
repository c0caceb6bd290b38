package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"relayapi/src/model"
)

// ArchiveDB is the optional relational archive connection. It stays nil when
// TFA_ARCHIVE_DSN is unset; callers must check Enabled().
var ArchiveDB *gorm.DB

// Enabled reports whether the archive has been initialized.
func Enabled() bool {
	return ArchiveDB != nil
}

// InitArchiveDB opens the archive connection and migrates its schema. Should
// be called once at startup; a missing DSN is not an error, the archive is
// simply off.
func InitArchiveDB() error {
	config := GetConfig()
	if config.ArchiveDSN == "" {
		logrus.Info("[database] event archive disabled (no TFA_ARCHIVE_DSN)")
		return nil
	}

	var dialector gorm.Dialector
	switch config.ArchiveDriver {
	case "postgres":
		dialector = postgres.Open(config.ArchiveDSN)
	case "sqlite":
		dialector = sqlite.Open(config.ArchiveDSN)
	default:
		return fmt.Errorf("unknown archive driver %q", config.ArchiveDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to archive database: %w", err)
	}

	if config.ArchiveDriver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get DB from GORM: %w", err)
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	// Assign to the global variable only after a successful connection.
	ArchiveDB = db

	logrus.Info("[database] ArchiveDB connection established")

	if err := ArchiveDB.AutoMigrate(&model.ArchivedEvent{}); err != nil {
		return fmt.Errorf("failed to run migrations on ArchiveDB: %w", err)
	}

	logrus.Info("[database] ArchiveDB migrations completed")

	return nil
}
