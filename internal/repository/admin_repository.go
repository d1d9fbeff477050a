// internal/repository/admin_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/models"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, translate(err, "admin")
	}
	return &admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, translate(err, "admin")
	}
	return &admin, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	return translate(r.db.WithContext(ctx).Create(admin).Error, "admin")
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", id).
		Update("last_login_at", time.Now())
	return affected(res, "admin")
}
