package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Size struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id,omitempty"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
	Sizes       []ProductSize   `json:"sizes,omitempty"`
}

// ProductSize is the stock ledger entry for one (product, size) pair.
type ProductSize struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	SizeID        int64     `json:"size_id"`
	SizeLabel     string    `json:"size_label,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CartItem struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	ProductSizeID int64           `json:"product_size_id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	SizeLabel     string          `json:"size_label"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Cart struct {
	UserID int64           `json:"user_id"`
	Items  []CartItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	OrderNumber string          `json:"order_number"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
	Items       []OrderItem     `json:"items,omitempty"`
	Shipping    *ShippingInfo   `json:"shipping,omitempty"`
	Slip        *PaymentSlip    `json:"payment_slip,omitempty"`
}

type OrderItem struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	ProductSizeID int64           `json:"product_size_id"`
	ProductName   string          `json:"product_name,omitempty"`
	SizeLabel     string          `json:"size_label,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ShippingInfo struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	District  string    `json:"district"`
	Amphoe    string    `json:"amphoe"`
	Province  string    `json:"province"`
	Zipcode   string    `json:"zipcode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShippingLabel is the fulfillment projection of a paid order's address.
type ShippingLabel struct {
	OrderID  int64  `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	District string `json:"district"`
	Amphoe   string `json:"amphoe"`
	Province string `json:"province"`
	Zipcode  string `json:"zipcode"`
}

type PaymentSlip struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
	ImageURL   string          `json:"image_url,omitempty"`
	Status     SlipStatus      `json:"status"`
	Verified   bool            `json:"verified"`
	VerifiedBy *int64          `json:"verified_by,omitempty"`
	VerifiedAt *time.Time      `json:"verified_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
