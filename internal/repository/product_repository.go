// internal/repository/product_repository.go
package repository

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

// attribute keys are produced by FieldNameFromLabel
var attributeKeyPattern = regexp.MustCompile(`^[a-z0-9_]{1,100}$`)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
	return translate(err, "product")
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Subcategory").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Subcategory").
		Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	return affected(res, "product")
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return affected(res, "product")
}

func (r *ProductRepository) Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	query := applyProductFilter(r.db.WithContext(ctx).Model(&models.Product{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := utils.PaginationParams{Page: filter.Page, Limit: filter.Limit, Sort: filter.Sort, Order: filter.Order}
	query = utils.ApplySort(query, params, models.ProductSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Preload("Category").Preload("Subcategory").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func applyProductFilter(query *gorm.DB, f models.ProductFilter) *gorm.DB {
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if len(f.SubcategoryIDs) > 0 {
		query = query.Where("subcategory_id IN ?", f.SubcategoryIDs)
	}
	if f.Condition != "" {
		query = query.Where("condition = ?", f.Condition)
	}
	if f.PriceMin != nil {
		query = query.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		query = query.Where("price <= ?", *f.PriceMax)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := containsPattern(search)
		query = query.Where("(title ILIKE ? OR short_description ILIKE ?)", pattern, pattern)
	}
	for key, value := range f.Dynamic {
		if !attributeKeyPattern.MatchString(key) || value == "" {
			continue
		}
		query = query.Where(datatypes.JSONQuery("dynamic_attributes").Equals(value, key))
	}
	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}
	if f.Featured != nil {
		query = query.Where("featured = ?", *f.Featured)
	}
	return query
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProductRepository) WithPrincipalImage(ctx context.Context, categoryID, excludeID *uuid.UUID, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("active = ?", true).
		Where("EXISTS (SELECT 1 FROM product_images pi WHERE pi.product_id = products.id AND pi.es_principal)")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
