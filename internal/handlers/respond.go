package handlers

import "github.com/gofiber/fiber/v2"

// storefrontError writes a customer-facing failure. The message is the
// localized text shown to the end user; the code is a stable machine-readable
// identifier. Raw error detail never reaches this response.
func storefrontError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"code":    code,
		"message": message,
	})
}
