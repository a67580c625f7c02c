package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/config"
	"github.com/example/matjar/internal/database"
	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/routes"
	"github.com/example/matjar/internal/services"
	"github.com/example/matjar/internal/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	seedAdmin(db)

	rdb := newRedisClient(cfg)
	if rdb == nil {
		log.Println("redis unavailable, OTP rate limiting disabled")
	}

	var dispatcher services.SmsDispatcher
	amqpConn, err := amqp.Dial(cfg.AmqpURL)
	if err != nil {
		log.Fatalf("rabbitmq connect failed: %v", err)
	}
	defer amqpConn.Close()

	publisher, err := services.NewSmsPublisher(amqpConn, cfg.SmsQueue)
	if err != nil {
		log.Fatalf("sms publisher setup failed: %v", err)
	}
	defer publisher.Close()
	dispatcher = publisher

	var sender services.SmsSender
	if cfg.SmsConfigured() {
		sender = services.NewSmsGatewayClient(cfg.SmsBaseURL, cfg.SmsUsername, cfg.SmsPassword, cfg.SmsSender)
	} else {
		log.Println("WARNING: SMS gateway credentials missing, verification codes will not be delivered")
		sender = services.NoopSender{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := services.ConsumeSmsQueue(ctx, amqpConn, cfg.SmsQueue, sender); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("sms consumer stopped: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		AppName: "Matjar Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Redis:    rdb,
		Sms:      dispatcher,
		Telegram: services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat),
	})

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

// newRedisClient connects to redis, returning nil when unreachable so the
// rate limiter can degrade open.
func newRedisClient(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil
	}
	return client
}

// seedAdmin creates the first admin user from the environment when the table
// is empty, so a fresh deployment can log in.
func seedAdmin(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		log.Printf("admin seed check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("no admin users and ADMIN_EMAIL/ADMIN_PASSWORD not set, admin API unreachable")
		return
	}

	hash, err := utils.HashAdminPassword(adminPassword)
	if err != nil {
		log.Printf("admin seed failed: %v", err)
		return
	}

	admin := models.AdminUser{
		Email:        adminEmail,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("admin seed failed: %v", err)
		return
	}
	log.Printf("seeded initial admin user %s", adminEmail)
}
