// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/machinery-catalog/internal/config"
	"github.com/javajoker/machinery-catalog/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established successfully")
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.Category{},
		&models.Subcategory{},
		&models.CategoryField{},
		&models.Product{},
		&models.ProductImage{},
		&models.Review{},
		&models.AdminUser{},
		&models.AuditLog{},
		&models.ReconciliationIssue{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

// uniqueIndexes back the application-level uniqueness checks; a failure to
// create one aborts startup.
var uniqueIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_slug_live ON products(slug) WHERE deleted_at IS NULL",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_lower ON categories(LOWER(name)) WHERE deleted_at IS NULL",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_category_fields_name ON category_fields(category_id, field_name) WHERE deleted_at IS NULL",
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, active)",
	"CREATE INDEX IF NOT EXISTS idx_products_dynamic_attributes ON products USING GIN(dynamic_attributes)",
	"CREATE INDEX IF NOT EXISTS idx_product_images_product_orden ON product_images(product_id, orden)",
	"CREATE INDEX IF NOT EXISTS idx_product_images_principal ON product_images(product_id) WHERE es_principal",
	"CREATE INDEX IF NOT EXISTS idx_reviews_active_created ON reviews(active, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
	"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_reconciliation_issues_open ON reconciliation_issues(created_at DESC) WHERE NOT resolved",
}

func createIndexes(db *gorm.DB) error {
	for _, index := range uniqueIndexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("%s: %w", index, err)
		}
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
	return nil
}
