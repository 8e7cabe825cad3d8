package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ohse-platform/incident-backend/internal/config"
	"github.com/ohse-platform/incident-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Duplicate-key errors surface as gorm.ErrDuplicatedKey, which the
		// identifier allocation retry loop depends on.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for all models.
func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.RefreshToken{},
		&models.Case{},
		&models.CaseComment{},
		&models.CaseAttachment{},
		&models.Investigation{},
		&models.InvestigationComment{},
		&models.InvestigationAttachment{},
		&models.Enquiry{},
		&models.EnquiryComment{},
		&models.OSHCoordinator{},
		&models.FloorMarshall{},
		&models.FirstAider{},
		&models.News{},
		&models.FAQ{},
		&models.UserGuide{},
		&models.SystemLog{},
	)
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
