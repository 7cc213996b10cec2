package transport

import "github.com/mpetrov/storefront/internal/models"

type OrderItemRequest struct {
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
}

type CreateOrderRequest struct {
	CustomerEmail   string                 `json:"customerEmail"`
	CustomerName    string                 `json:"customerName"`
	Items           []OrderItemRequest     `json:"items"`
	TotalAmount     float64                `json:"totalAmount"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentPhone    string                 `json:"paymentPhone"`
	TransactionID   string                 `json:"transactionId"`
	Notes           string                 `json:"notes"`
}

type UpdateOrderRequest struct {
	Status         *string `json:"status"`
	PaymentStatus  *string `json:"paymentStatus"`
	TrackingNumber *string `json:"trackingNumber"`
	Notes          *string `json:"notes"`
}

type CreateProductRequest struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Stock          int               `json:"stock"`
	Category       string            `json:"category"`
	Images         []string          `json:"images"`
	Discount       int               `json:"discount"`
	SKU            string            `json:"sku"`
	Specifications map[string]string `json:"specifications"`
}

type PatchProductRequest struct {
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	Price          *float64           `json:"price"`
	Stock          *int               `json:"stock"`
	Category       *string            `json:"category"`
	Images         *[]string          `json:"images"`
	Discount       *int               `json:"discount"`
	SKU            *string            `json:"sku"`
	Specifications *map[string]string `json:"specifications"`
}

type CategoryRequest struct {
	Name         string `json:"name"`
	HeroImage    string `json:"heroImage"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"isActive"`
	DisplayOrder int    `json:"displayOrder"`
}

type PatchCategoryRequest struct {
	Name         *string `json:"name"`
	HeroImage    *string `json:"heroImage"`
	Description  *string `json:"description"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
}

type ReviewRequest struct {
	Author       string `json:"author"`
	Content      string `json:"content"`
	Rating       int    `json:"rating"`
	IsActive     *bool  `json:"isActive"`
	IsFeatured   *bool  `json:"isFeatured"`
	DisplayOrder int    `json:"displayOrder"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
