package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/models"
)

type ReviewRepo struct {
	DB *gorm.DB
}

func (r *ReviewRepo) Get(ctx context.Context, id uint) (*models.Review, error) {
	review := models.Review{}
	if err := r.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepo) List(ctx context.Context, activeOnly bool) ([]models.Review, error) {
	q := r.DB.WithContext(ctx).Model(&models.Review{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var items []models.Review
	if err := q.Order("display_order ASC, created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Create(review).Error
}

func (r *ReviewRepo) Save(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Save(review).Error
}

func (r *ReviewRepo) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: review %d", domain.ErrNotFound, id)
	}
	return nil
}
