package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/config"
)

// HealthHandler reports service liveness and configuration problems that are
// not fixable by retrying a request, like missing SMS gateway credentials.
type HealthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg}
}

// Health returns the service status.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	warnings := []string{}
	if !h.cfg.SmsConfigured() {
		warnings = append(warnings, "sms gateway credentials missing: verification codes cannot be delivered")
	}

	status := "ok"
	if dbStatus != "ok" {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":   status,
		"database": dbStatus,
		"warnings": warnings,
	})
}
