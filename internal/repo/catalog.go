package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/models"
)

type CatalogRepo struct {
	DB *gorm.DB
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &product, nil
}

type ProductFilter struct {
	CategoryID *uint
}

func (r *CatalogRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *CatalogRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	return nil
}

// ReduceStock is the atomic "reduce by N, fail if insufficient" operation:
// one conditional UPDATE, so two concurrent orders can never drive stock
// below zero.
func (r *CatalogRepo) ReduceStock(ctx context.Context, id uint, quantity int) (*models.Product, error) {
	if err := reduceStock(r.DB.WithContext(ctx), id, quantity); err != nil {
		return nil, err
	}
	return r.GetProduct(ctx, id)
}

func reduceStock(tx *gorm.DB, id uint, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
		}
		return fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, id)
	}
	return nil
}

// ActiveCategoryByName matches case-insensitively and only returns active
// categories; products must never be attached to an inactive one.
func (r *CatalogRepo) ActiveCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	category := models.Category{}
	err := r.DB.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND is_active = ?", name, true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCategory, name)
		}
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category := models.Category{}
	if err := r.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepo) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	q := r.DB.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var items []models.Category
	if err := q.Order("display_order ASC, name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	if err := r.DB.WithContext(ctx).Create(cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: category %q already exists", domain.ErrConflict, cat.Name)
		}
		return err
	}
	return nil
}

func (r *CatalogRepo) SaveCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Save(cat).Error
}

func (r *CatalogRepo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: category %d", domain.ErrNotFound, id)
	}
	return nil
}
