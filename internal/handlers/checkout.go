package handlers

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/matjar/internal/middleware"
	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/services"
	"github.com/example/matjar/internal/utils"
)

// CheckoutHandler places buy-now orders on a public storefront.
type CheckoutHandler struct {
	db       *gorm.DB
	telegram *services.TelegramService
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(db *gorm.DB, telegram *services.TelegramService) *CheckoutHandler {
	return &CheckoutHandler{db: db, telegram: telegram}
}

type checkoutRequest struct {
	CustomerName string  `json:"customer_name"`
	Phone        string  `json:"phone"`
	ProductTitle string  `json:"product_title"`
	Quantity     int     `json:"quantity"`
	UnitPriceSAR float64 `json:"unit_price_sar"`
	Notes        string  `json:"notes"`
}

// Checkout creates a simple order for the resolved store. No session is
// required to buy; verification only gates reading orders back.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	store, _ := middleware.CurrentStore(c)

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return storefrontError(c, fiber.StatusBadRequest, "invalid_body", "طلب غير صالح")
	}

	if req.CustomerName == "" || req.ProductTitle == "" {
		return storefrontError(c, fiber.StatusBadRequest, "missing_fields", "يرجى تعبئة جميع الحقول المطلوبة")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.UnitPriceSAR < 0 {
		return storefrontError(c, fiber.StatusBadRequest, "invalid_price", "قيمة الطلب غير صحيحة")
	}

	phone, err := utils.NormalizePhone(req.Phone)
	if errors.Is(err, utils.ErrInvalidPhone) {
		return storefrontError(c, fiber.StatusBadRequest, "invalid_phone", "رقم الجوال غير صحيح")
	}
	if err != nil {
		return err
	}

	order := models.SimpleOrder{
		StoreID:       store.ID,
		OrderNumber:   orderNumber("S"),
		CustomerName:  req.CustomerName,
		CustomerPhone: phone,
		Status:        string(models.StatusPending),
		ProductTitle:  req.ProductTitle,
		Quantity:      req.Quantity,
		UnitPriceSAR:  req.UnitPriceSAR,
		TotalSAR:      req.UnitPriceSAR * float64(req.Quantity),
		Notes:         req.Notes,
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	if err := upsertCustomer(h.db, store.ID, phone, req.CustomerName); err != nil {
		return err
	}

	if h.telegram != nil {
		go func() {
			name := store.NameAr
			if name == "" {
				name = store.Name
			}
			_ = h.telegram.NotifyNewOrder(services.NewOrderNotification{
				StoreName:    name,
				OrderNumber:  order.OrderNumber,
				CustomerName: order.CustomerName,
				ProductTitle: order.ProductTitle,
				Quantity:     order.Quantity,
				TotalSAR:     order.TotalSAR,
			})
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"total_sar":    order.TotalSAR,
			"created_at":   order.CreatedAt,
		},
	})
}

// upsertCustomer records or refreshes the customer row for a store.
func upsertCustomer(db *gorm.DB, storeID uuid.UUID, phone, name string) error {
	now := time.Now()
	customer := models.Customer{
		StoreID:     storeID,
		Phone:       phone,
		Name:        name,
		LastOrderAt: &now,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "last_order_at", "updated_at"}),
	}).Create(&customer).Error
}

// orderNumber builds a human-facing number from the full timestamp plus a
// random suffix, so two orders created in the same instant still get
// distinct numbers and the unique index on order_number never trips.
func orderNumber(prefix string) string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	suffix := binary.BigEndian.Uint32(b[:]) % 1_000_000
	return fmt.Sprintf("%s-%d-%06d", prefix, time.Now().UnixNano(), suffix)
}
