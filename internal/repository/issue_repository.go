// internal/repository/issue_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

// IssueRepository stores reconciliation issues for operators.
type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Record(ctx context.Context, issue *models.ReconciliationIssue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *IssueRepository) List(ctx context.Context, resolved *bool, params utils.PaginationParams) ([]models.ReconciliationIssue, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReconciliationIssue{})
	if resolved != nil {
		query = query.Where("resolved = ?", *resolved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var issues []models.ReconciliationIssue
	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&issues).Error
	return issues, total, err
}

func (r *IssueRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.ReconciliationIssue{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": time.Now()})
	return affected(res, "issue")
}
