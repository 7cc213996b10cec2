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

type OrderRepo struct {
	DB *gorm.DB
}

// CreateOrder persists the order with its line items, decrements every
// referenced product's stock, and appends the confirmation outbox row — all
// in one transaction, so a failed decrement leaves no trace of the order.
// A duplicate order number surfaces as ErrConflict for the caller to retry
// with a fresh number.
func (r *OrderRepo) CreateOrder(ctx context.Context, order *models.Order, note *models.Notification) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: order number %s", domain.ErrConflict, order.OrderNumber)
			}
			return err
		}
		for i := range order.Items {
			if err := reduceStock(tx, order.Items[i].ProductID, order.Items[i].Quantity); err != nil {
				return err
			}
		}
		if note != nil {
			if err := tx.Create(note).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *OrderRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order := models.Order{}
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	Status        *domain.OrderStatus
	CustomerEmail string
	OrderNumber   string
}

func (r *OrderRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CustomerEmail != "" {
		q = q.Where("customer_email = ?", f.CustomerEmail)
	}
	if f.OrderNumber != "" {
		q = q.Where("order_number = ?", f.OrderNumber)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// SaveOrder writes an updated order and, when the status changed, the
// status-change outbox row in the same transaction. Line items are
// snapshots and never rewritten.
func (r *OrderRepo) SaveOrder(ctx context.Context, order *models.Order, note *models.Notification) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		if note != nil {
			if err := tx.Create(note).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *OrderRepo) DeleteOrder(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
		}
		return nil
	})
}

type StatusTotal struct {
	Status  domain.OrderStatus `json:"status"`
	Count   int64              `json:"count"`
	Revenue float64            `json:"revenue"`
}

// StatusTotals groups the whole order collection by status in SQL; the
// calendar rollups are computed in the analytics service over windows
// fetched with ListCreatedBetween.
func (r *OrderRepo) StatusTotals(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *OrderRepo) ListAll(ctx context.Context, excludeCancelled bool) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if excludeCancelled {
		q = q.Where("status <> ?", domain.OrderStatusCancelled)
	}
	var orders []models.Order
	if err := q.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepo) ListCreatedBetween(ctx context.Context, from, to time.Time, excludeCancelled bool) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to)
	if excludeCancelled {
		q = q.Where("status <> ?", domain.OrderStatusCancelled)
	}
	var orders []models.Order
	if err := q.Preload("Items").Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
