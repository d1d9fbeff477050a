// internal/services/repositories.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/machinery-catalog/internal/models"
)

// Repositories return errs.ErrNotFound for missing rows and errs.ErrConflict
// for unique constraint violations; any other failure is a backend error.

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	// WithPrincipalImage lists active products that have a principal image, newest first.
	WithPrincipalImage(ctx context.Context, categoryID, excludeID *uuid.UUID, limit int) ([]models.Product, error)
}

type ProductImageRepository interface {
	// ListByProduct returns the images of a product ordered by position.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error)
	ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductImage, error)
	// ListByPaths returns the images, of any product, stored at one of paths.
	ListByPaths(ctx context.Context, paths []string) ([]models.ProductImage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error)
	Create(ctx context.Context, image *models.ProductImage) error
	UpdatePosition(ctx context.Context, id uuid.UUID, position int, principal bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error)
	ListActive(ctx context.Context, limit int) ([]models.Review, error)
	Ratings(ctx context.Context) ([]int, error)
	// DistinctValues returns the sorted non-empty values of a text column ("city" or "province").
	DistinctValues(ctx context.Context, column string) ([]string, error)
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error)
	CreateSubcategory(ctx context.Context, sub *models.Subcategory) error
	UpdateSubcategory(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error

	// ListFields returns field definitions ordered by position.
	ListFields(ctx context.Context, categoryID uuid.UUID) ([]models.CategoryField, error)
	GetField(ctx context.Context, id uuid.UUID) (*models.CategoryField, error)
	CreateField(ctx context.Context, field *models.CategoryField) error
	UpdateField(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteField(ctx context.Context, id uuid.UUID) error
}

// IssueLog is the durable side channel for states that compensation could not repair.
type IssueLog interface {
	Record(ctx context.Context, issue *models.ReconciliationIssue) error
}

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	Create(ctx context.Context, admin *models.AdminUser) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}
