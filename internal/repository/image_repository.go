// internal/repository/image_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/models"
)

// ProductImageRepository hard-deletes rows: a removed image has no storage object
// left to point at.
type ProductImageRepository struct {
	db *gorm.DB
}

func NewProductImageRepository(db *gorm.DB) *ProductImageRepository {
	return &ProductImageRepository{db: db}
}

func (r *ProductImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("orden ASC").Order("created_at ASC").Find(&images).Error
	return images, err
}

func (r *ProductImageRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductImage, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var images []models.ProductImage
	err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).
		Order("product_id").Order("orden ASC").Find(&images).Error
	return images, err
}

func (r *ProductImageRepository) ListByPaths(ctx context.Context, paths []string) ([]models.ProductImage, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	var images []models.ProductImage
	err := r.db.WithContext(ctx).Where("storage_path IN ?", paths).Find(&images).Error
	return images, err
}

func (r *ProductImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, translate(err, "image")
	}
	return &image, nil
}

func (r *ProductImageRepository) Create(ctx context.Context, image *models.ProductImage) error {
	return translate(r.db.WithContext(ctx).Create(image).Error, "image")
}

func (r *ProductImageRepository) UpdatePosition(ctx context.Context, id uuid.UUID, position int, principal bool) error {
	res := r.db.WithContext(ctx).Model(&models.ProductImage{}).Where("id = ?", id).
		Updates(map[string]interface{}{"orden": position, "es_principal": principal})
	return affected(res, "image")
}

func (r *ProductImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&models.ProductImage{}, "id = ?", id)
	return affected(res, "image")
}

func (r *ProductImageRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Unscoped().Where("product_id = ?", productID).Delete(&models.ProductImage{})
	return res.RowsAffected, res.Error
}
