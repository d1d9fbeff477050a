// internal/services/admin_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

type IssueStore interface {
	IssueLog
	List(ctx context.Context, resolved *bool, params utils.PaginationParams) ([]models.ReconciliationIssue, int64, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type AuditStore interface {
	List(ctx context.Context, resourceType string, params utils.PaginationParams) ([]models.AuditLog, int64, error)
}

// AdminService backs the back-office dashboard: catalog counters, the
// reconciliation issue queue and the audit trail.
type AdminService struct {
	db     *gorm.DB
	issues IssueStore
	audits AuditStore
}

type AdminDashboardStats struct {
	TotalProducts        int64   `json:"total_products"`
	ActiveProducts       int64   `json:"active_products"`
	FeaturedProducts     int64   `json:"featured_products"`
	NewProductsThisMonth int64   `json:"new_products_this_month"`
	TotalImages          int64   `json:"total_images"`
	TotalReviews         int64   `json:"total_reviews"`
	ActiveReviews        int64   `json:"active_reviews"`
	AverageRating        float64 `json:"average_rating"`
	TotalCategories      int64   `json:"total_categories"`
	OpenIssues           int64   `json:"open_issues"`
}

func NewAdminService(db *gorm.DB, issues IssueStore, audits AuditStore) *AdminService {
	return &AdminService{
		db:     db,
		issues: issues,
		audits: audits,
	}
}

func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	db := s.db.WithContext(ctx)

	counts := []struct {
		name  string
		query *gorm.DB
		dest  *int64
	}{
		{"products", db.Model(&models.Product{}), &stats.TotalProducts},
		{"active products", db.Model(&models.Product{}).Where("active = ?", true), &stats.ActiveProducts},
		{"featured products", db.Model(&models.Product{}).Where("featured = ?", true), &stats.FeaturedProducts},
		{"new products", db.Model(&models.Product{}).Where("created_at >= ?", monthStart), &stats.NewProductsThisMonth},
		{"images", db.Model(&models.ProductImage{}), &stats.TotalImages},
		{"reviews", db.Model(&models.Review{}), &stats.TotalReviews},
		{"active reviews", db.Model(&models.Review{}).Where("active = ?", true), &stats.ActiveReviews},
		{"categories", db.Model(&models.Category{}), &stats.TotalCategories},
		{"open issues", db.Model(&models.ReconciliationIssue{}).Where("resolved = ?", false), &stats.OpenIssues},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
	}

	var average float64
	if err := db.Model(&models.Review{}).Select("COALESCE(AVG(rating), 0)").Scan(&average).Error; err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	stats.AverageRating = roundOneDecimal(average)

	return stats, nil
}

// ListIssues pages through reconciliation issues, newest first. A nil resolved
// returns both open and resolved ones.
func (s *AdminService) ListIssues(ctx context.Context, resolved *bool, params utils.PaginationParams) ([]models.ReconciliationIssue, int64, error) {
	return s.issues.List(ctx, resolved, params)
}

func (s *AdminService) ResolveIssue(ctx context.Context, id uuid.UUID) error {
	return s.issues.Resolve(ctx, id)
}

func (s *AdminService) ListAuditLogs(ctx context.Context, resourceType string, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	return s.audits.List(ctx, resourceType, params)
}
