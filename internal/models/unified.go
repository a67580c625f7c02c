package models

import "time"

// OrderSource identifies which origin table a unified order came from.
type OrderSource string

const (
	SourceEcommerce OrderSource = "ecommerce"
	SourceSimple    OrderSource = "simple"
	SourceManual    OrderSource = "manual"
)

// UnifiedOrder is the normalized view of an order regardless of origin. It is
// what the customer-facing gateway and the admin listings return.
type UnifiedOrder struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Source      OrderSource        `json:"source"`
	CreatedAt   time.Time          `json:"created_at"`
	Status      OrderStatus        `json:"status"`
	TotalSAR    float64            `json:"total_sar"`
	ItemCount   int                `json:"item_count"`
	Items       []UnifiedOrderItem `json:"items"`
}

// UnifiedOrderItem is one normalized order line.
type UnifiedOrderItem struct {
	Title        string  `json:"title"`
	Quantity     int     `json:"quantity"`
	UnitPriceSAR float64 `json:"unit_price_sar"`
	TotalSAR     float64 `json:"total_sar"`
}
