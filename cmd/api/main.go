package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"lms-api/internal/config"
	"lms-api/internal/db"
	"lms-api/internal/email"
	apihttp "lms-api/internal/http"
	"lms-api/internal/imagehost"
	"lms-api/internal/payment"
	"lms-api/internal/repository"
	"lms-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	courseRepo := repository.NewPgCourseRepository(pool)
	orderRepo := repository.NewPgOrderRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)
	layoutRepo := repository.NewPgLayoutRepository(pool)

	// Sin Redis el servicio arranca igual con stores en memoria; sirve
	// para desarrollo local, no para multiples replicas.
	sessions := service.NewMemorySessionStore()
	courseCache := service.NewMemoryCourseCache(cfg.CourseCacheTTL())
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			sessions = service.NewRedisSessionStore(redisClient)
			courseCache = service.NewRedisCourseCache(redisClient, cfg.CourseCacheTTL())
		}
		cancel()
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var images imagehost.Uploader = imagehost.NewDisabledUploader("image host not configured")
	if cfg.ImageHostBaseURL != "" {
		images = imagehost.NewHTTPClient(cfg.ImageHostBaseURL, cfg.ImageHostAPIKey, logger)
	}

	var payments payment.Provider = payment.NewDisabledProvider("payment provider not configured")
	if cfg.PaymentBaseURL != "" {
		payments = payment.NewHTTPProvider(cfg.PaymentBaseURL, cfg.PaymentAPIKey, logger)
	}

	tokens := service.NewTokenService(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.ActivationSecret,
		cfg.AccessTokenTTL(),
		cfg.RefreshTokenTTL(),
		cfg.ActivationTTL(),
	)

	userSvc := service.NewUserService(logger, userRepo, sessions, tokens, emailSender, images, cfg.SessionTTL())
	courseSvc := service.NewCourseService(logger, courseRepo, notificationRepo, courseCache, images, emailSender)
	orderSvc := service.NewOrderService(logger, orderRepo, notificationRepo, userSvc, courseSvc, emailSender, payments)
	notificationSvc := service.NewNotificationService(logger, notificationRepo)
	layoutSvc := service.NewLayoutService(logger, layoutRepo, images)

	notificationSvc.StartSweep(ctx)

	cookies := apihttp.CookieOptions{
		Domain:     cfg.CookieDomain,
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	}
	guard := apihttp.NewAuthGuard(logger, tokens, sessions, cookies, cfg.SessionTTL())

	userHandler := apihttp.NewUserHandler(logger, userSvc, tokens, sessions, cookies, cfg.SessionTTL())
	courseHandler := apihttp.NewCourseHandler(logger, courseSvc)
	orderHandler := apihttp.NewOrderHandler(logger, orderSvc)
	notificationHandler := apihttp.NewNotificationHandler(logger, notificationSvc)
	layoutHandler := apihttp.NewLayoutHandler(logger, layoutSvc)
	analyticsHandler := apihttp.NewAnalyticsHandler(logger, userRepo, courseRepo, orderRepo)

	router := apihttp.NewRouter(
		logger,
		cfg.Origin,
		guard,
		userHandler,
		courseHandler,
		orderHandler,
		notificationHandler,
		layoutHandler,
		analyticsHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
