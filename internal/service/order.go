package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/events"
	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/notify"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/transport"
)

const orderNumberAttempts = 5

type OrderService struct {
	Repo     *repo.OrderRepo
	Catalog  *repo.CatalogRepo
	Producer events.Publisher // optional

	now func() time.Time
}

func NewOrderService(orders *repo.OrderRepo, catalog *repo.CatalogRepo, producer events.Publisher) *OrderService {
	return &OrderService{
		Repo:     orders,
		Catalog:  catalog,
		Producer: producer,
		now:      time.Now,
	}
}

// GenerateOrderNumber builds the human-readable order id: fixed prefix plus
// a random 6-digit suffix. Collisions are caught by the unique index and
// retried by CreateOrder.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%06d", rand.IntN(1000000))
}

// CreateOrder runs the full creation pipeline: validate, pre-check stock,
// then persist order + stock decrements + confirmation outbox row in one
// transaction. Once it returns the order is durable and every referenced
// stock reflects the purchase; on any error nothing is left behind.
func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		product, err := s.Catalog.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < it.Quantity {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	order := &models.Order{
		CustomerEmail:   req.CustomerEmail,
		CustomerName:    req.CustomerName,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		PaymentPhone:    req.PaymentPhone,
		TransactionID:   req.TransactionID,
		Notes:           req.Notes,
	}

	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = GenerateOrderNumber()

		var note *models.Notification
		note, err = notify.BuildOrderConfirmation(order, s.now())
		if err != nil {
			return nil, err
		}

		err = s.Repo.CreateOrder(ctx, order, note)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		l.Warn("order_number_collision", "orderNumber", order.OrderNumber, "attempt", attempt+1)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order, "order_created")
	l.Info("order_created", "orderNumber", order.OrderNumber, "items", len(order.Items))
	return order, nil
}

func validateCreateOrder(req transport.CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return fmt.Errorf("%w: customerEmail required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return fmt.Errorf("%w: customerName required", domain.ErrValidation)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items required", domain.ErrValidation)
	}
	for _, it := range req.Items {
		if it.ProductID == 0 {
			return fmt.Errorf("%w: productId required", domain.ErrValidation)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be >= 1", domain.ErrValidation)
		}
		if it.Price < 0 {
			return fmt.Errorf("%w: price must be >= 0", domain.ErrValidation)
		}
	}
	if req.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount must be >= 0", domain.ErrValidation)
	}
	if strings.TrimSpace(req.ShippingAddress.Street) == "" || strings.TrimSpace(req.ShippingAddress.City) == "" {
		return fmt.Errorf("%w: shippingAddress required", domain.ErrValidation)
	}
	return nil
}

// UpdateOrder applies status/payment/tracking/notes changes. The status set
// is validated but transitions are not ordered: the admin console uses this
// for corrections. First entry into confirmed/shipped/delivered stamps the
// matching timestamp, once.
func (s *OrderService) UpdateOrder(ctx context.Context, id uint, req transport.UpdateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update", "order", id)

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	prevStatus := order.Status

	if req.Status != nil {
		status, err := domain.ToOrderStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		order.Status = status

		now := s.now()
		switch status {
		case domain.OrderStatusConfirmed:
			if order.ConfirmedAt == nil {
				order.ConfirmedAt = &now
			}
		case domain.OrderStatusShipped:
			if order.ShippedAt == nil {
				order.ShippedAt = &now
			}
		case domain.OrderStatusDelivered:
			if order.DeliveredAt == nil {
				order.DeliveredAt = &now
			}
		}
	}
	if req.PaymentStatus != nil {
		paymentStatus, err := domain.ToPaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, err
		}
		order.PaymentStatus = paymentStatus
	}
	if req.TrackingNumber != nil {
		order.TrackingNumber = *req.TrackingNumber
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	var note *models.Notification
	if order.Status != prevStatus {
		note, err = notify.BuildStatusChange(order, s.now())
		if err != nil {
			return nil, err
		}
	}

	if err := s.Repo.SaveOrder(ctx, order, note); err != nil {
		return nil, err
	}

	if order.Status != prevStatus {
		s.publish(ctx, order, "order_status_changed")
		l.Info("order_status_changed", "orderNumber", order.OrderNumber, "from", string(prevStatus), "to", string(order.Status))
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.Repo.GetOrder(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, f repo.OrderFilter, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, f, offset, limit)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.Repo.DeleteOrder(ctx, id)
}

func (s *OrderService) publish(ctx context.Context, order *models.Order, eventType string) {
	if s.Producer == nil {
		return
	}
	event := map[string]any{
		"type":        eventType,
		"orderNumber": order.OrderNumber,
		"status":      string(order.Status),
		"total":       order.TotalAmount,
	}
	if err := s.Producer.PublishEvent(ctx, events.TopicOrderEvents, order.OrderNumber, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "svc", "order", "error", err)
	}
}
