// internal/repository/audit_repository.go
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) List(ctx context.Context, resourceType string, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&entries).Error
	return entries, total, err
}
