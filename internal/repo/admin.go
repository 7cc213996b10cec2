package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/models"
)

type AdminRepo struct {
	DB *gorm.DB
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin := models.Admin{}
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admin %s", domain.ErrNotFound, email)
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	admin := models.Admin{}
	if err := r.DB.WithContext(ctx).First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admin %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	if err := r.DB.WithContext(ctx).Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: admin %s already exists", domain.ErrConflict, admin.Email)
		}
		return err
	}
	return nil
}

func (r *AdminRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

func (r *AdminRepo) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}
