package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/matjar/internal/flow"
	"github.com/example/matjar/internal/middleware"
	"github.com/example/matjar/internal/services"
	"github.com/example/matjar/internal/utils"
)

// OtpHandler exposes the guest verification flow: send a code, verify it,
// inspect the flow state, log out.
type OtpHandler struct {
	otp      *services.OtpService
	sessions *services.SessionService
}

// NewOtpHandler constructs an OtpHandler.
func NewOtpHandler(otp *services.OtpService, sessions *services.SessionService) *OtpHandler {
	return &OtpHandler{otp: otp, sessions: sessions}
}

type sendCodeRequest struct {
	Phone string `json:"phone"`
}

// SendCode issues a fresh OTP challenge for the resolved store and dispatches
// it out of band. The code never appears in the response.
func (h *OtpHandler) SendCode(c *fiber.Ctx) error {
	store, _ := middleware.CurrentStore(c)

	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return storefrontError(c, fiber.StatusBadRequest, "invalid_body", "طلب غير صالح")
	}

	if req.Phone == "" {
		return storefrontError(c, fiber.StatusBadRequest, "missing_phone", "يرجى إدخال رقم الجوال")
	}

	if err := h.otp.SendCode(c.Context(), store, req.Phone); err != nil {
		if errors.Is(err, utils.ErrInvalidPhone) {
			return storefrontError(c, fiber.StatusBadRequest, "invalid_phone", "رقم الجوال غير صحيح")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "تم إرسال رمز التحقق إلى رقم جوالك",
	})
}

type verifyCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyCode checks a submitted code and returns a session token on success.
// All rejections share one generic response.
func (h *OtpHandler) VerifyCode(c *fiber.Ctx) error {
	store, _ := middleware.CurrentStore(c)

	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return storefrontError(c, fiber.StatusBadRequest, "invalid_body", "طلب غير صالح")
	}

	if req.Phone == "" || req.Code == "" {
		return storefrontError(c, fiber.StatusBadRequest, "missing_fields", "يرجى إدخال رقم الجوال ورمز التحقق")
	}

	token, session, err := h.otp.VerifyCode(c.Context(), store, req.Phone, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrVerificationFailed) {
			return storefrontError(c, fiber.StatusBadRequest, "verification_failed", "تعذر التحقق، يرجى طلب رمز جديد والمحاولة مرة أخرى")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"session_token": token,
			"phone":         session.Phone,
			"expires_at":    session.ExpiresAt,
		},
	})
}

// Logout revokes the presented session.
func (h *OtpHandler) Logout(c *fiber.Ctx) error {
	store, _ := middleware.CurrentStore(c)
	token, ok := middleware.CurrentSessionToken(c)
	if !ok {
		return storefrontError(c, fiber.StatusUnauthorized, "session_invalid", "لا توجد جلسة نشطة")
	}

	if err := h.sessions.Revoke(c.Context(), store.ID, token); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "تم تسجيل الخروج",
	})
}

// SessionState tells a returning client which flow step to render: a valid
// bearer token yields verified, a pending challenge for the supplied phone
// yields otp entry, anything else starts at phone entry.
func (h *OtpHandler) SessionState(c *fiber.Ctx) error {
	store, _ := middleware.CurrentStore(c)

	hasSession := false
	if token := bearerTokenParam(c); token != "" {
		if _, err := h.sessions.Validate(c.Context(), store.ID, token); err == nil {
			hasSession = true
		} else if !errors.Is(err, services.ErrSessionInvalid) {
			return err
		}
	}

	hasPending := false
	if !hasSession {
		if phone := c.Query("phone"); phone != "" {
			pending, err := h.otp.HasPendingChallenge(c.Context(), store.ID, phone)
			if err != nil {
				return err
			}
			hasPending = pending
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"state": flow.Resolve(hasSession, hasPending),
		},
	})
}

func bearerTokenParam(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
