package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/repository"
	"github.com/example/matjar/internal/services"
)

const (
	storeContextKey   = "storefrontStore"
	phoneContextKey   = "customerPhone"
	sessionContextKey = "customerSessionToken"
)

// ResolveStore loads the active store for the :slug path param into context.
// Unknown and inactive stores are indistinguishable to callers.
func ResolveStore(stores *repository.StoreRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, err := stores.ActiveBySlug(c.Context(), c.Params("slug"))
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"code":    "store_not_found",
				"message": "المتجر غير موجود",
			})
		}
		if err != nil {
			return err
		}

		c.Locals(storeContextKey, store)
		return c.Next()
	}
}

// CustomerSessionAuth validates the bearer session token against the resolved
// store and loads the bound phone into context. The phone is always derived
// server-side from the token; nothing client supplied is trusted.
func CustomerSessionAuth(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, ok := CurrentStore(c)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "store not resolved")
		}

		token, ok := bearerToken(c)
		if !ok {
			return unauthorizedSession(c)
		}

		phone, err := sessions.Validate(c.Context(), store.ID, token)
		if errors.Is(err, services.ErrSessionInvalid) {
			return unauthorizedSession(c)
		}
		if err != nil {
			return err
		}

		c.Locals(phoneContextKey, phone)
		c.Locals(sessionContextKey, token)
		return c.Next()
	}
}

func unauthorizedSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"code":    "session_invalid",
		"message": "انتهت الجلسة، يرجى التحقق من رقم الجوال مرة أخرى",
	})
}

// CurrentStore extracts the resolved store from context.
func CurrentStore(c *fiber.Ctx) (*models.Store, bool) {
	store, ok := c.Locals(storeContextKey).(*models.Store)
	return store, ok
}

// CurrentCustomerPhone extracts the session-bound phone from context.
func CurrentCustomerPhone(c *fiber.Ctx) (string, bool) {
	phone, ok := c.Locals(phoneContextKey).(string)
	return phone, ok && phone != ""
}

// CurrentSessionToken extracts the raw bearer token from context.
func CurrentSessionToken(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(sessionContextKey).(string)
	return token, ok && token != ""
}
