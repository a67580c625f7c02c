package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/middleware"
	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/utils"
)

// StoreHandler manages tenant storefronts.
type StoreHandler struct {
	db *gorm.DB
}

// NewStoreHandler constructs a StoreHandler.
func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{db: db}
}

// PublicInfo returns the public fields of the resolved store.
func (h *StoreHandler) PublicInfo(c *fiber.Ctx) error {
	store, _ := middleware.CurrentStore(c)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"slug":     store.Slug,
			"name":     store.Name,
			"name_ar":  store.NameAr,
			"currency": store.Currency,
		},
	})
}

type storeRequest struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	NameAr   string `json:"name_ar"`
	Currency string `json:"currency"`
	IsActive *bool  `json:"is_active"`
}

// CreateStore registers a new tenant storefront.
func (h *StoreHandler) CreateStore(c *fiber.Ctx) error {
	var req storeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Slug == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "slug and name are required")
	}

	var existing models.Store
	if err := h.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "slug already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	store := models.Store{
		Slug:     req.Slug,
		Name:     req.Name,
		NameAr:   req.NameAr,
		Currency: req.Currency,
		IsActive: true,
	}
	if store.Currency == "" {
		store.Currency = "SAR"
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := h.db.Create(&store).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": store})
}

// ListStores returns all storefronts, paginated.
func (h *StoreHandler) ListStores(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Store{}).Count(&total).Error; err != nil {
		return err
	}

	var stores []models.Store
	if err := h.db.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&stores).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stores,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// UpdateStore changes a store's name, currency or active flag. Deactivating a
// store immediately stops OTP issuance for it.
func (h *StoreHandler) UpdateStore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var store models.Store
	if err := h.db.First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "store not found")
		}
		return err
	}

	var req storeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != "" {
		store.Name = req.Name
	}
	if req.NameAr != "" {
		store.NameAr = req.NameAr
	}
	if req.Currency != "" {
		store.Currency = req.Currency
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := h.db.Save(&store).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": store})
}
