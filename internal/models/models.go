package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mpetrov/storefront/internal/domain"
)

type Category struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null"     json:"name"`
	HeroImage    string    `json:"heroImage"`
	Description  string    `json:"description"`
	IsActive     bool      `gorm:"default:true"             json:"isActive"`
	DisplayOrder int       `gorm:"default:0"                json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Stock       int     `gorm:"not null;default:0"       json:"stock"`

	// CategoryID is the normalized reference; CategoryName doubles as the
	// denormalized display name and, for rows predating normalization, the
	// legacy bare reference (CategoryID nil). The backfill migration resolves
	// legacy rows into CategoryID.
	CategoryID   *uint     `gorm:"index"        json:"categoryId"`
	CategoryName string    `json:"category"`
	Category     *Category `gorm:"foreignKey:CategoryID" json:"-"`

	Images         StringSlice `gorm:"type:text" json:"images"`
	Discount       int         `gorm:"default:0" json:"discount"`
	SKU            string      `json:"sku"`
	Specifications StringMap   `gorm:"type:text" json:"specifications"`
	Rating         float64     `gorm:"default:0" json:"rating"`
	ReviewCount    int         `gorm:"default:0" json:"reviewCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Thumbnail is the image attached to analytics rows.
func (p *Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"orderId"`
	ProductID uint    `gorm:"not null"                 json:"productId"`
	Name      string  `gorm:"not null"                 json:"name"`
	Price     float64 `gorm:"not null"                 json:"price"`
	Quantity  int     `gorm:"not null;check:quantity>0" json:"quantity"`
}

type Order struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string `gorm:"uniqueIndex;not null"     json:"orderNumber"`
	CustomerEmail string `gorm:"index;not null"           json:"customerEmail"`
	CustomerName  string `gorm:"not null"                 json:"customerName"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	TotalAmount     float64         `gorm:"not null" json:"totalAmount"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`

	Status        domain.OrderStatus   `gorm:"index;not null;default:pending" json:"status"`
	PaymentStatus domain.PaymentStatus `gorm:"not null;default:pending"       json:"paymentStatus"`

	PaymentMethod  string `json:"paymentMethod,omitempty"`
	PaymentPhone   string `json:"paymentPhone,omitempty"`
	TransactionID  string `json:"transactionId,omitempty"`
	Notes          string `json:"notes,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Review struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Author       string    `gorm:"not null"                 json:"author"`
	Content      string    `gorm:"not null"                 json:"content"`
	Rating       int       `gorm:"not null"                 json:"rating"`
	IsActive     bool      `gorm:"default:true"             json:"isActive"`
	IsFeatured   bool      `gorm:"default:false"            json:"isFeatured"`
	DisplayOrder int       `gorm:"default:0"                json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Admin struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Role         string     `gorm:"not null;default:admin"   json:"role"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type NotificationKind string

const (
	NotificationOrderConfirmation NotificationKind = "order_confirmation"
	NotificationStatusChange      NotificationKind = "status_change"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is the transactional outbox row: written in the same
// transaction as the order mutation it announces, delivered later by the
// notify worker.
type Notification struct {
	ID            uuid.UUID          `gorm:"type:text;primaryKey" json:"id"`
	Kind          NotificationKind   `gorm:"not null"             json:"kind"`
	OrderNumber   string             `gorm:"index"                json:"orderNumber"`
	Recipient     string             `gorm:"not null"             json:"recipient"`
	Subject       string             `gorm:"not null"             json:"subject"`
	Body          string             `gorm:"not null"             json:"body"`
	Status        NotificationStatus `gorm:"index;not null;default:pending" json:"status"`
	Attempts      int                `gorm:"default:0"            json:"attempts"`
	NextAttemptAt time.Time          `gorm:"index"                json:"nextAttemptAt"`
	LastError     string             `json:"lastError,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	SentAt        *time.Time         `json:"sentAt,omitempty"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Review{},
		&Admin{},
		&Notification{},
	}
}
