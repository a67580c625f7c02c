package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/config"
	"github.com/example/matjar/internal/handlers"
	"github.com/example/matjar/internal/middleware"
	"github.com/example/matjar/internal/repository"
	"github.com/example/matjar/internal/services"
)

// Deps carries the shared collaborators the routes need.
type Deps struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Redis    *redis.Client
	Sms      services.SmsDispatcher
	Telegram *services.TelegramService
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, d Deps) {
	stores := repository.NewStoreRepo(d.DB)
	challenges := repository.NewChallengeRepo(d.DB)
	sessionRepo := repository.NewSessionRepo(d.DB)

	sessionService := services.NewSessionService(sessionRepo, d.Cfg.SessionTTL)
	otpService := services.NewOtpService(challenges, sessionService, d.Sms, d.Cfg.OtpTTL)
	orderService := services.NewUnifiedOrderService(
		repository.NewEcommerceOrderSource(d.DB),
		repository.NewSimpleOrderSource(d.DB),
		repository.NewManualOrderSource(d.DB),
	)

	authHandler := handlers.NewAuthHandler(d.DB, d.Cfg)
	otpHandler := handlers.NewOtpHandler(otpService, sessionService)
	orderHandler := handlers.NewStorefrontOrderHandler(orderService)
	checkoutHandler := handlers.NewCheckoutHandler(d.DB, d.Telegram)
	storeHandler := handlers.NewStoreHandler(d.DB)
	adminHandler := handlers.NewAdminHandler(d.DB, orderService, d.Telegram)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Cfg)

	api := app.Group("/api")

	api.Get("/health", healthHandler.Health)

	// Public storefront routes, all scoped to one resolved store.
	storefront := api.Group("/storefront/:slug", middleware.ResolveStore(stores))
	storefront.Get("/", storeHandler.PublicInfo)
	storefront.Post("/checkout", checkoutHandler.Checkout)

	otpLimiter := middleware.OtpRateLimit(d.Redis, d.Cfg.OtpRateLimit, d.Cfg.OtpRateWindow)
	storefront.Post("/otp/send", otpLimiter, otpHandler.SendCode)
	storefront.Post("/otp/verify", otpLimiter, otpHandler.VerifyCode)

	storefront.Get("/session/state", otpHandler.SessionState)

	// Session-guarded storefront routes.
	verified := storefront.Group("", middleware.CustomerSessionAuth(sessionService))
	verified.Get("/orders", orderHandler.ListMyOrders)
	verified.Post("/session/logout", otpHandler.Logout)

	// Admin routes.
	api.Post("/admin/login", authHandler.Login)

	admin := api.Group("/admin", middleware.AdminAuth(d.Cfg))
	admin.Post("/users", authHandler.CreateAdmin)
	admin.Get("/stats", adminHandler.DashboardStats)

	admin.Post("/stores", storeHandler.CreateStore)
	admin.Get("/stores", storeHandler.ListStores)
	admin.Put("/stores/:id", storeHandler.UpdateStore)

	admin.Get("/customers", adminHandler.ListCustomers)
	admin.Get("/customers/export", adminHandler.ExportCustomersCSV)

	admin.Post("/withdrawals", adminHandler.CreateWithdrawal)
	admin.Get("/withdrawals", adminHandler.ListWithdrawals)
	admin.Get("/withdrawals/export", adminHandler.ExportWithdrawalsCSV)
	admin.Patch("/withdrawals/:id/status", adminHandler.UpdateWithdrawalStatus)

	admin.Post("/orders/manual", adminHandler.CreateManualOrder)
}
