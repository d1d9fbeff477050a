// internal/repository/category_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") })
}

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.withChildren(ctx).Order("sort_order ASC").Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.withChildren(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &category, nil
}

func (r *CategoryRepository) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &category, nil
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Omit("Subcategories", "Fields").Create(category).Error, "category")
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	return affected(res, "category")
}

// DeleteCategory removes a category with its subcategories and fields. It refuses
// while products still reference the category.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return fmt.Errorf("category has %d product(s): %w", products, errs.ErrConflict)
		}

		if err := tx.Unscoped().Where("category_id = ?", id).Delete(&models.CategoryField{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("category_id = ?", id).Delete(&models.Subcategory{}).Error; err != nil {
			return err
		}
		return affected(tx.Unscoped().Delete(&models.Category{}, "id = ?", id), "category")
	})
}

func (r *CategoryRepository) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var subs []models.Subcategory
	err := query.Find(&subs).Error
	return subs, err
}

func (r *CategoryRepository) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	return translate(r.db.WithContext(ctx).Create(sub).Error, "subcategory")
}

func (r *CategoryRepository) UpdateSubcategory(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Subcategory{}).Where("id = ?", id).Updates(updates)
	return affected(res, "subcategory")
}

// DeleteSubcategory detaches products from the subcategory before removing it.
func (r *CategoryRepository) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("subcategory_id = ?", id).
			Update("subcategory_id", nil).Error; err != nil {
			return err
		}
		return affected(tx.Unscoped().Delete(&models.Subcategory{}, "id = ?", id), "subcategory")
	})
}

func (r *CategoryRepository) ListFields(ctx context.Context, categoryID uuid.UUID) ([]models.CategoryField, error) {
	var fields []models.CategoryField
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).
		Order("orden ASC").Order("created_at ASC").Find(&fields).Error
	return fields, err
}

func (r *CategoryRepository) GetField(ctx context.Context, id uuid.UUID) (*models.CategoryField, error) {
	var field models.CategoryField
	if err := r.db.WithContext(ctx).First(&field, "id = ?", id).Error; err != nil {
		return nil, translate(err, "field")
	}
	return &field, nil
}

func (r *CategoryRepository) CreateField(ctx context.Context, field *models.CategoryField) error {
	return translate(r.db.WithContext(ctx).Create(field).Error, "field")
}

func (r *CategoryRepository) UpdateField(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.CategoryField{}).Where("id = ?", id).Updates(updates)
	return affected(res, "field")
}

func (r *CategoryRepository) DeleteField(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&models.CategoryField{}, "id = ?", id)
	return affected(res, "field")
}
