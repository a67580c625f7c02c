package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/matjar/internal/middleware"
	"github.com/example/matjar/internal/services"
	"github.com/example/matjar/internal/utils"
)

// StorefrontOrderHandler serves the order listing behind a verified session.
type StorefrontOrderHandler struct {
	orders *services.UnifiedOrderService
}

// NewStorefrontOrderHandler constructs a StorefrontOrderHandler.
func NewStorefrontOrderHandler(orders *services.UnifiedOrderService) *StorefrontOrderHandler {
	return &StorefrontOrderHandler{orders: orders}
}

// ListMyOrders returns the verified customer's orders across all origins,
// most recent first. The phone comes from the session, never from the query.
func (h *StorefrontOrderHandler) ListMyOrders(c *fiber.Ctx) error {
	store, _ := middleware.CurrentStore(c)
	phone, ok := middleware.CurrentCustomerPhone(c)
	if !ok {
		return storefrontError(c, fiber.StatusUnauthorized, "session_invalid", "انتهت الجلسة، يرجى التحقق من رقم الجوال مرة أخرى")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListForCustomer(c.Context(), store.ID, phone, pg.Offset, pg.Limit)
	if err != nil {
		log.Printf("[ORDERS] listing failed for store %s: %v", store.Slug, err)
		return storefrontError(c, fiber.StatusBadGateway, "orders_unavailable", "تعذر تحميل الطلبات، يرجى المحاولة مرة أخرى")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
