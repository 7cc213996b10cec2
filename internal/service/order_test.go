package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/transport"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{6}$`)

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(&repo.OrderRepo{DB: db}, &repo.CatalogRepo{DB: db}, nil)
}

func validOrderRequest(productID uint) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		CustomerEmail: "jane@example.com",
		CustomerName:  "Jane Doe",
		Items: []transport.OrderItemRequest{
			{ProductID: productID, Quantity: 3, Price: 10, Name: "Vase"},
		},
		TotalAmount: 30,
		ShippingAddress: models.ShippingAddress{
			Street: "1 Main St",
			City:   "Springfield",
		},
	}
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)

	product := models.Product{Name: "Vase", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	order, err := svc.CreateOrder(ctx, validOrderRequest(product.ID))
	require.NoError(t, err)

	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Len(t, order.Items, 1)

	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 2, after.Stock)

	var notes []models.Notification
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 1, "confirmation outbox row must be written with the order")
	assert.Equal(t, models.NotificationOrderConfirmation, notes[0].Kind)
	assert.Equal(t, "jane@example.com", notes[0].Recipient)
	assert.Equal(t, order.OrderNumber, notes[0].OrderNumber)
	assert.Equal(t, models.NotificationPending, notes[0].Status)
	assert.Contains(t, notes[0].Body, "Vase")
}

func TestOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)

	product := models.Product{Name: "Vase", Price: 10, Stock: 2}
	require.NoError(t, db.Create(&product).Error)

	_, err := svc.CreateOrder(ctx, validOrderRequest(product.ID))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Vase")

	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 2, after.Stock)

	var orderCount, noteCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.Notification{}).Count(&noteCount).Error)
	assert.Zero(t, orderCount, "rejected order must leave no order row")
	assert.Zero(t, noteCount, "rejected order must leave no outbox row")
}

func TestOrderService_CreateOrder_AllOrNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)

	product := models.Product{Name: "Vase", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	// Both lines pass the pre-check individually, but together they exceed
	// stock: the decrement phase must roll back the whole order.
	req := validOrderRequest(product.ID)
	req.Items = append(req.Items, req.Items[0])
	req.TotalAmount = 60

	_, err := svc.CreateOrder(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 5, after.Stock, "partial decrement must be rolled back")

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)

	require.NoError(t, db.Create(&models.Product{Name: "Vase", Price: 10, Stock: 5}).Error)

	tests := []struct {
		name   string
		mutate func(r *transport.CreateOrderRequest)
	}{
		{name: "missing email", mutate: func(r *transport.CreateOrderRequest) { r.CustomerEmail = "" }},
		{name: "missing name", mutate: func(r *transport.CreateOrderRequest) { r.CustomerName = "" }},
		{name: "no items", mutate: func(r *transport.CreateOrderRequest) { r.Items = nil }},
		{name: "zero quantity", mutate: func(r *transport.CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{name: "negative price", mutate: func(r *transport.CreateOrderRequest) { r.Items[0].Price = -1 }},
		{name: "missing product id", mutate: func(r *transport.CreateOrderRequest) { r.Items[0].ProductID = 0 }},
		{name: "negative total", mutate: func(r *transport.CreateOrderRequest) { r.TotalAmount = -1 }},
		{name: "missing address", mutate: func(r *transport.CreateOrderRequest) { r.ShippingAddress.Street = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrderRequest(1)
			tt.mutate(&req)

			_, err := svc.CreateOrder(ctx, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestOrderService_CreateOrder_PublishesEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewOrderService(&repo.OrderRepo{DB: db}, &repo.CatalogRepo{DB: db}, pub)

	product := models.Product{Name: "Vase", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	order, err := svc.CreateOrder(ctx, validOrderRequest(product.ID))
	require.NoError(t, err)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, "order_created", events[0]["type"])
	assert.Equal(t, order.OrderNumber, events[0]["orderNumber"])
}

func TestOrderService_UpdateOrder_TimestampsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)

	product := models.Product{Name: "Vase", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	order, err := svc.CreateOrder(ctx, validOrderRequest(product.ID))
	require.NoError(t, err)

	firstNow := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return firstNow }

	shipped := "shipped"
	updated, err := svc.UpdateOrder(ctx, order.ID, transport.UpdateOrderRequest{Status: &shipped})
	require.NoError(t, err)
	require.NotNil(t, updated.ShippedAt)
	assert.True(t, updated.ShippedAt.Equal(firstNow))

	svc.now = func() time.Time { return firstNow.Add(48 * time.Hour) }

	again, err := svc.UpdateOrder(ctx, order.ID, transport.UpdateOrderRequest{Status: &shipped})
	require.NoError(t, err)
	require.NotNil(t, again.ShippedAt)
	assert.True(t, again.ShippedAt.Equal(firstNow), "second shipped transition must not move shippedAt")
}

func TestOrderService_UpdateOrder_StatusChangeSideEffects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)

	product := models.Product{Name: "Vase", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	order, err := svc.CreateOrder(ctx, validOrderRequest(product.ID))
	require.NoError(t, err)

	confirmed := "confirmed"
	updated, err := svc.UpdateOrder(ctx, order.ID, transport.UpdateOrderRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.NotNil(t, updated.ConfirmedAt)

	var notes []models.Notification
	require.NoError(t, db.Where("kind = ?", models.NotificationStatusChange).Find(&notes).Error)
	require.Len(t, notes, 1, "status change must append a status-change outbox row")
	assert.Contains(t, notes[0].Subject, "confirmed")

	// A field-only update must not notify.
	notesOnly := "leave at the door"
	_, err = svc.UpdateOrder(ctx, order.ID, transport.UpdateOrderRequest{Notes: &notesOnly})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("kind = ?", models.NotificationStatusChange).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestOrderService_UpdateOrder_InvalidStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)

	product := models.Product{Name: "Vase", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	order, err := svc.CreateOrder(ctx, validOrderRequest(product.ID))
	require.NoError(t, err)

	bogus := "teleported"
	_, err = svc.UpdateOrder(ctx, order.ID, transport.UpdateOrderRequest{Status: &bogus})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateOrderNumber_Format(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		assert.Regexp(t, orderNumberPattern, GenerateOrderNumber())
	}
}
