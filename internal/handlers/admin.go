package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/middleware"
	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/services"
	"github.com/example/matjar/internal/utils"
)

// Column order and Arabic labels are the CSV export contract.
var (
	customersCSVHeader   = []string{"الاسم", "رقم الجوال", "المتجر", "آخر طلب", "تاريخ التسجيل"}
	withdrawalsCSVHeader = []string{"رقم الطلب", "مقدم الطلب", "رقم الجوال", "المبلغ (ر.س)", "الطريقة", "الحالة", "تاريخ الطلب"}
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db       *gorm.DB
	orders   *services.UnifiedOrderService
	telegram *services.TelegramService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.UnifiedOrderService, telegram *services.TelegramService) *AdminHandler {
	return &AdminHandler{db: db, orders: orders, telegram: telegram}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalStores int64
	if err := h.db.Model(&models.Store{}).Where("is_active = ?", true).Count(&totalStores).Error; err != nil {
		return err
	}

	var totalCustomers int64
	if err := h.db.Model(&models.Customer{}).Count(&totalCustomers).Error; err != nil {
		return err
	}

	orderCounts := fiber.Map{}
	revenue := float64(0)
	for name, model := range map[string]interface{}{
		"ecommerce": &models.EcommerceOrder{},
		"simple":    &models.SimpleOrder{},
		"manual":    &models.ManualOrder{},
	} {
		var count int64
		if err := h.db.Model(model).Count(&count).Error; err != nil {
			return err
		}
		orderCounts[name] = count

		var sum float64
		if err := h.db.Model(model).
			Where("status != ?", string(models.StatusCancelled)).
			Select("COALESCE(SUM(total_sar), 0)").
			Scan(&sum).Error; err != nil {
			return err
		}
		revenue += sum
	}

	var pendingWithdrawals int64
	if err := h.db.Model(&models.Withdrawal{}).
		Where("status = ?", models.WithdrawalPending).
		Count(&pendingWithdrawals).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"active_stores":       totalStores,
			"total_customers":     totalCustomers,
			"orders_by_source":    orderCounts,
			"total_revenue_sar":   revenue,
			"pending_withdrawals": pendingWithdrawals,
		},
	})
}

func (h *AdminHandler) customersQuery(c *fiber.Ctx) (*gorm.DB, error) {
	query := h.db.Model(&models.Customer{})
	if storeID := c.Query("store_id"); storeID != "" {
		id, err := uuid.Parse(storeID)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid store_id")
		}
		query = query.Where("store_id = ?", id)
	}
	return query, nil
}

// ListCustomers returns the customers of one store, or of all stores, each
// with their order count and lifetime value across every order source.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	query, err := h.customersQuery(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&customers).Error; err != nil {
		return err
	}

	items := make([]fiber.Map, 0, len(customers))
	for _, cust := range customers {
		ordersCount, ordersTotal, err := h.orders.TotalsForCustomer(c.Context(), cust.StoreID, cust.Phone)
		if err != nil {
			return err
		}
		items = append(items, fiber.Map{
			"id":               cust.ID,
			"store_id":         cust.StoreID,
			"name":             cust.Name,
			"phone":            cust.Phone,
			"last_order_at":    cust.LastOrderAt,
			"created_at":       cust.CreatedAt,
			"orders_count":     ordersCount,
			"orders_total_sar": ordersTotal,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ExportCustomersCSV downloads the current customer set as a CSV file.
func (h *AdminHandler) ExportCustomersCSV(c *fiber.Ctx) error {
	query, err := h.customersQuery(c)
	if err != nil {
		return err
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").Find(&customers).Error; err != nil {
		return err
	}

	storeNames, err := h.storeNames()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(customers))
	for _, cust := range customers {
		lastOrder := ""
		if cust.LastOrderAt != nil {
			lastOrder = cust.LastOrderAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			cust.Name,
			cust.Phone,
			storeNames[cust.StoreID],
			lastOrder,
			cust.CreatedAt.Format("2006-01-02"),
		})
	}

	data, err := utils.WriteCSV(customersCSVHeader, rows)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="customers.csv"`)
	return c.Send(data)
}

type createWithdrawalRequest struct {
	StoreID       string  `json:"store_id"`
	RequesterName string  `json:"requester_name"`
	Phone         string  `json:"phone"`
	AmountSAR     float64 `json:"amount_sar"`
	Method        string  `json:"method"`
	IBAN          string  `json:"iban"`
}

// CreateWithdrawal records an affiliate withdrawal request.
func (h *AdminHandler) CreateWithdrawal(c *fiber.Ctx) error {
	var req createWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid store_id")
	}
	if req.RequesterName == "" || req.AmountSAR <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "requester_name and a positive amount_sar are required")
	}

	var store models.Store
	if err := h.db.First(&store, "id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "store not found")
		}
		return err
	}

	withdrawal := models.Withdrawal{
		StoreID:       storeID,
		RequestNumber: orderNumber("W"),
		RequesterName: req.RequesterName,
		Phone:         req.Phone,
		AmountSAR:     req.AmountSAR,
		Method:        req.Method,
		IBAN:          req.IBAN,
		Status:        models.WithdrawalPending,
	}
	if err := h.db.Create(&withdrawal).Error; err != nil {
		return err
	}

	if h.telegram != nil {
		go func() {
			_ = h.telegram.NotifyWithdrawalRequest(services.WithdrawalNotification{
				StoreName:     store.Name,
				RequestNumber: withdrawal.RequestNumber,
				RequesterName: withdrawal.RequesterName,
				AmountSAR:     withdrawal.AmountSAR,
				Method:        withdrawal.Method,
			})
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": withdrawal})
}

func (h *AdminHandler) withdrawalsQuery(c *fiber.Ctx) (*gorm.DB, error) {
	query := h.db.Model(&models.Withdrawal{})
	if storeID := c.Query("store_id"); storeID != "" {
		id, err := uuid.Parse(storeID)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid store_id")
		}
		query = query.Where("store_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		parsed, err := models.ParseWithdrawalStatus(status)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		query = query.Where("status = ?", parsed)
	}
	return query, nil
}

// ListWithdrawals returns withdrawal requests, filterable by store and status.
func (h *AdminHandler) ListWithdrawals(c *fiber.Ctx) error {
	query, err := h.withdrawalsQuery(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var withdrawals []models.Withdrawal
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&withdrawals).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    withdrawals,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type withdrawalStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateWithdrawalStatus moves a withdrawal along its lifecycle.
func (h *AdminHandler) UpdateWithdrawalStatus(c *fiber.Ctx) error {
	adminID, ok := middleware.CurrentAdminID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req withdrawalStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	target, err := models.ParseWithdrawalStatus(req.Status)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	var withdrawal models.Withdrawal
	if err := h.db.First(&withdrawal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "withdrawal not found")
		}
		return err
	}

	if !withdrawal.Status.CanTransition(target) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "illegal status transition")
	}

	now := time.Now()
	withdrawal.Status = target
	withdrawal.AdminNote = req.Note
	withdrawal.ProcessedAt = &now
	withdrawal.ProcessedBy = &adminID

	if err := h.db.Save(&withdrawal).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": withdrawal})
}

// ExportWithdrawalsCSV downloads the current withdrawal set as a CSV file.
func (h *AdminHandler) ExportWithdrawalsCSV(c *fiber.Ctx) error {
	query, err := h.withdrawalsQuery(c)
	if err != nil {
		return err
	}

	var withdrawals []models.Withdrawal
	if err := query.Order("created_at desc").Find(&withdrawals).Error; err != nil {
		return err
	}

	rows := make([][]string, 0, len(withdrawals))
	for _, w := range withdrawals {
		rows = append(rows, []string{
			w.RequestNumber,
			w.RequesterName,
			w.Phone,
			services.FormatSAR(w.AmountSAR),
			w.Method,
			string(w.Status),
			w.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	data, err := utils.WriteCSV(withdrawalsCSVHeader, rows)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="withdrawals.csv"`)
	return c.Send(data)
}

type manualOrderItemRequest struct {
	Title        string  `json:"title"`
	Quantity     int     `json:"quantity"`
	UnitPriceSAR float64 `json:"unit_price_sar"`
}

type manualOrderRequest struct {
	StoreID      string                   `json:"store_id"`
	CustomerName string                   `json:"customer_name"`
	Phone        string                   `json:"phone"`
	Items        []manualOrderItemRequest `json:"items"`
	Note         string                   `json:"note"`
}

// CreateManualOrder records an order on behalf of a customer.
func (h *AdminHandler) CreateManualOrder(c *fiber.Ctx) error {
	adminID, ok := middleware.CurrentAdminID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req manualOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid store_id")
	}
	if req.CustomerName == "" || len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "customer_name and items are required")
	}

	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid phone")
	}

	total := float64(0)
	for i := range req.Items {
		if req.Items[i].Quantity <= 0 {
			req.Items[i].Quantity = 1
		}
		total += req.Items[i].UnitPriceSAR * float64(req.Items[i].Quantity)
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return err
	}

	order := models.ManualOrder{
		StoreID:       storeID,
		OrderNumber:   orderNumber("M"),
		CustomerName:  req.CustomerName,
		CustomerPhone: phone,
		Status:        string(models.StatusConfirmed),
		TotalSAR:      total,
		ItemsJSON:     string(itemsJSON),
		Note:          req.Note,
		RecordedBy:    adminID,
	}
	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	if err := upsertCustomer(h.db, storeID, phone, req.CustomerName); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

func (h *AdminHandler) storeNames() (map[uuid.UUID]string, error) {
	var stores []models.Store
	if err := h.db.Find(&stores).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	return names, nil
}
