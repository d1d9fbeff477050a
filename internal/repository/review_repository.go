// internal/repository/review_repository.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

var distinctReviewColumns = map[string]bool{"city": true, "province": true}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).Create(review).Error, "review")
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err, "review")
	}
	return &review, nil
}

func (r *ReviewRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Updates(updates)
	return affected(res, "review")
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&models.Review{}, "id = ?", id)
	return affected(res, "review")
}

func (r *ReviewRepository) Search(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error) {
	query := applyReviewFilter(r.db.WithContext(ctx).Model(&models.Review{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := utils.PaginationParams{Page: filter.Page, Limit: filter.Limit, Sort: filter.Sort, Order: filter.Order}
	query = utils.ApplySort(query, params, models.ReviewSortFields)
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func applyReviewFilter(query *gorm.DB, f models.ReviewFilter) *gorm.DB {
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := containsPattern(search)
		query = query.Where("(title ILIKE ? OR author ILIKE ? OR comment ILIKE ?)", pattern, pattern, pattern)
	}
	if f.Rating > 0 {
		query = query.Where("rating = ?", f.Rating)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		query = query.Where("city ILIKE ?", containsPattern(city))
	}
	if province := strings.TrimSpace(f.Province); province != "" {
		query = query.Where("province ILIKE ?", containsPattern(province))
	}
	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}
	return query
}

func (r *ReviewRepository) ListActive(ctx context.Context, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Where("active = ?", true).
		Order("created_at DESC").Limit(limit).Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) Ratings(ctx context.Context) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&models.Review{}).Pluck("rating", &ratings).Error
	return ratings, err
}

func (r *ReviewRepository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	if !distinctReviewColumns[column] {
		return nil, fmt.Errorf("column %q is not listable", column)
	}
	var values []string
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Distinct().Order(column).Pluck(column, &values).Error
	return values, err
}
