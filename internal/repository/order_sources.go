package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/models"
)

// The three order origins keep their historical table shapes; each adapter
// here translates its shape into the unified view. Status strings are parsed
// into the closed enum during translation, so an unknown status surfaces as
// an error instead of leaking through to customers.

// EcommerceOrderSource reads cart-pipeline orders.
type EcommerceOrderSource struct {
	db *gorm.DB
}

// NewEcommerceOrderSource constructs the adapter.
func NewEcommerceOrderSource(db *gorm.DB) *EcommerceOrderSource {
	return &EcommerceOrderSource{db: db}
}

// ListByCustomer returns the customer's ecommerce orders in unified form.
func (s *EcommerceOrderSource) ListByCustomer(ctx context.Context, storeID uuid.UUID, phone string) ([]models.UnifiedOrder, error) {
	var orders []models.EcommerceOrder
	err := s.db.WithContext(ctx).Preload("Items").
		Where("store_id = ? AND customer_phone = ?", storeID, phone).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	unified := make([]models.UnifiedOrder, 0, len(orders))
	for _, o := range orders {
		status, err := models.ParseOrderStatus(o.Status)
		if err != nil {
			return nil, fmt.Errorf("ecommerce order %s: %w", o.OrderNumber, err)
		}

		items := make([]models.UnifiedOrderItem, 0, len(o.Items))
		count := 0
		for _, item := range o.Items {
			items = append(items, models.UnifiedOrderItem{
				Title:        item.ProductTitle,
				Quantity:     item.Quantity,
				UnitPriceSAR: item.UnitPriceSAR,
				TotalSAR:     item.TotalSAR,
			})
			count += item.Quantity
		}

		unified = append(unified, models.UnifiedOrder{
			OrderID:     o.ID.String(),
			OrderNumber: o.OrderNumber,
			Source:      models.SourceEcommerce,
			CreatedAt:   o.CreatedAt,
			Status:      status,
			TotalSAR:    o.TotalSAR,
			ItemCount:   count,
			Items:       items,
		})
	}
	return unified, nil
}

// SimpleOrderSource reads buy-now orders, whose single product lives inline
// on the order row.
type SimpleOrderSource struct {
	db *gorm.DB
}

// NewSimpleOrderSource constructs the adapter.
func NewSimpleOrderSource(db *gorm.DB) *SimpleOrderSource {
	return &SimpleOrderSource{db: db}
}

// ListByCustomer returns the customer's simple orders in unified form.
func (s *SimpleOrderSource) ListByCustomer(ctx context.Context, storeID uuid.UUID, phone string) ([]models.UnifiedOrder, error) {
	var orders []models.SimpleOrder
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND customer_phone = ?", storeID, phone).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	unified := make([]models.UnifiedOrder, 0, len(orders))
	for _, o := range orders {
		status, err := models.ParseOrderStatus(o.Status)
		if err != nil {
			return nil, fmt.Errorf("simple order %s: %w", o.OrderNumber, err)
		}

		unified = append(unified, models.UnifiedOrder{
			OrderID:     o.ID.String(),
			OrderNumber: o.OrderNumber,
			Source:      models.SourceSimple,
			CreatedAt:   o.CreatedAt,
			Status:      status,
			TotalSAR:    o.TotalSAR,
			ItemCount:   o.Quantity,
			Items: []models.UnifiedOrderItem{{
				Title:        o.ProductTitle,
				Quantity:     o.Quantity,
				UnitPriceSAR: o.UnitPriceSAR,
				TotalSAR:     o.TotalSAR,
			}},
		})
	}
	return unified, nil
}

// ManualOrderSource reads admin-recorded orders, whose items are a JSON
// document on the row.
type ManualOrderSource struct {
	db *gorm.DB
}

// NewManualOrderSource constructs the adapter.
func NewManualOrderSource(db *gorm.DB) *ManualOrderSource {
	return &ManualOrderSource{db: db}
}

type manualItem struct {
	Title        string  `json:"title"`
	Quantity     int     `json:"quantity"`
	UnitPriceSAR float64 `json:"unit_price_sar"`
}

// ListByCustomer returns the customer's manual orders in unified form.
func (s *ManualOrderSource) ListByCustomer(ctx context.Context, storeID uuid.UUID, phone string) ([]models.UnifiedOrder, error) {
	var orders []models.ManualOrder
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND customer_phone = ?", storeID, phone).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	unified := make([]models.UnifiedOrder, 0, len(orders))
	for _, o := range orders {
		status, err := models.ParseOrderStatus(o.Status)
		if err != nil {
			return nil, fmt.Errorf("manual order %s: %w", o.OrderNumber, err)
		}

		var raw []manualItem
		if o.ItemsJSON != "" {
			if err := json.Unmarshal([]byte(o.ItemsJSON), &raw); err != nil {
				return nil, fmt.Errorf("manual order %s items: %w", o.OrderNumber, err)
			}
		}

		items := make([]models.UnifiedOrderItem, 0, len(raw))
		count := 0
		for _, item := range raw {
			items = append(items, models.UnifiedOrderItem{
				Title:        item.Title,
				Quantity:     item.Quantity,
				UnitPriceSAR: item.UnitPriceSAR,
				TotalSAR:     item.UnitPriceSAR * float64(item.Quantity),
			})
			count += item.Quantity
		}

		unified = append(unified, models.UnifiedOrder{
			OrderID:     o.ID.String(),
			OrderNumber: o.OrderNumber,
			Source:      models.SourceManual,
			CreatedAt:   o.CreatedAt,
			Status:      status,
			TotalSAR:    o.TotalSAR,
			ItemCount:   count,
			Items:       items,
		})
	}
	return unified, nil
}
