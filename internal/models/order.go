package models

import (
	"time"

	"github.com/google/uuid"
)

// Orders come from three heterogeneous origins that predate this service and
// keep their historical shapes: full ecommerce orders with item rows, one-shot
// "simple" buy-now orders, and manually recorded orders with free-form items.
// The unified gateway merges all three behind one adapter contract.

// EcommerceOrder is a cart-pipeline order. This service reads it but never
// writes it; the checkout pipeline that produces it lives elsewhere.
type EcommerceOrder struct {
	BaseModel
	StoreID       uuid.UUID            `gorm:"type:uuid;index" json:"store_id"`
	OrderNumber   string               `gorm:"uniqueIndex" json:"order_number"`
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `gorm:"index" json:"customer_phone"`
	Status        string               `json:"status"`
	SubtotalSAR   float64              `json:"subtotal_sar"`
	ShippingSAR   float64              `json:"shipping_sar"`
	TotalSAR      float64              `json:"total_sar"`
	PaymentMethod string               `json:"payment_method"`
	Items         []EcommerceOrderItem `json:"items,omitempty"`
}

// EcommerceOrderItem is one line of an ecommerce order.
type EcommerceOrderItem struct {
	BaseModel
	OrderID      uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductTitle string    `json:"product_title"`
	Quantity     int       `json:"quantity"`
	UnitPriceSAR float64   `json:"unit_price_sar"`
	TotalSAR     float64   `json:"total_sar"`
}

// SimpleOrder is a single-product buy-now order placed straight from a
// storefront product page. The product fields live inline on the row.
type SimpleOrder struct {
	BaseModel
	StoreID       uuid.UUID `gorm:"type:uuid;index" json:"store_id"`
	OrderNumber   string    `gorm:"uniqueIndex" json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `gorm:"index" json:"customer_phone"`
	Status        string    `json:"status"`
	ProductTitle  string    `json:"product_title"`
	Quantity      int       `json:"quantity"`
	UnitPriceSAR  float64   `json:"unit_price_sar"`
	TotalSAR      float64   `json:"total_sar"`
	Notes         string    `json:"notes"`
}

// ManualOrder is recorded by an admin on behalf of a customer. Items are kept
// as a JSON document because admins enter them free-form.
type ManualOrder struct {
	BaseModel
	StoreID       uuid.UUID `gorm:"type:uuid;index" json:"store_id"`
	OrderNumber   string    `gorm:"uniqueIndex" json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `gorm:"index" json:"customer_phone"`
	Status        string    `json:"status"`
	TotalSAR      float64   `json:"total_sar"`
	ItemsJSON     string    `json:"items_json"`
	Note          string    `json:"note"`
	RecordedBy    uuid.UUID `gorm:"type:uuid" json:"recorded_by"`
}

// Customer is upserted whenever an order is placed or recorded, so the admin
// surface can list and export the customers of a store.
type Customer struct {
	BaseModel
	StoreID     uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_customer_store_phone" json:"store_id"`
	Phone       string     `gorm:"uniqueIndex:idx_customer_store_phone" json:"phone"`
	Name        string     `json:"name"`
	LastOrderAt *time.Time `json:"last_order_at"`
}
