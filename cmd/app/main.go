package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lmsplatform/internal/application/usecase"
	"lmsplatform/internal/config"
	"lmsplatform/internal/domain"
	"lmsplatform/internal/infrastructure/cache"
	"lmsplatform/internal/infrastructure/email"
	"lmsplatform/internal/infrastructure/media"
	"lmsplatform/internal/infrastructure/repository"
	"lmsplatform/internal/infrastructure/security"
	"lmsplatform/internal/infrastructure/video"
	"lmsplatform/internal/logger"
	"lmsplatform/internal/middleware"
	handlers "lmsplatform/internal/transport/http"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// 1. Конфиг
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Mode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 2. MongoDB (курсы, пользователи, нотификации)
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logg.Fatal("Failed to connect to MongoDB", "err", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		logg.Fatal("Failed to ping MongoDB", "err", err)
	}
	logg.Info("Connected to MongoDB", "uri", cfg.MongoURI)
	mongoDB := mongoClient.Database(cfg.MongoDB)

	// 3. Postgres (журнал заказов)
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	pg, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logg.Fatal("Failed to connect to Postgres", "err", err)
	}
	if err := pg.AutoMigrate(&domain.Order{}); err != nil {
		logg.Fatal("Failed to run migrations", "err", err)
	}
	logg.Info("Connected to Postgres", "host", cfg.DBHost)

	// 4. Redis (кеш курсов, refresh-токены, rate limit)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logg.Fatal("Failed to connect to Redis", "err", err)
	}
	logg.Info("Connected to Redis", "addr", cfg.RedisAddr)

	// 5. Инфраструктура
	courseRepo := repository.NewCourseRepository(mongoDB)
	userRepo := repository.NewUserRepository(mongoDB)
	notificationRepo := repository.NewNotificationRepository(mongoDB)
	orderRepo := repository.NewOrderRepository(pg)

	courseCache := cache.NewCourseCache(rdb)
	tokenCache := cache.NewTokenCache(rdb)

	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret)
	hasher := security.NewPasswordHasher()
	mailer := email.NewEmailSender(cfg.SendgridKey, cfg.SenderEmail)
	imageHost := media.NewImageHost(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret)
	otpClient := video.NewOTPClient(cfg.VdoCipherSecret)

	// 6. Use cases
	notificationUC := usecase.NewNotificationUseCase(notificationRepo)
	courseUC := usecase.NewCourseUseCase(courseRepo, courseCache, notificationUC, mailer, imageHost, otpClient, logg)
	orderUC := usecase.NewOrderUseCase(orderRepo, userRepo, courseRepo, mailer, notificationUC, logg)
	userUC := usecase.NewUserUseCase(userRepo, hasher, tokenManager, tokenCache, imageHost, logg)

	// 7. Транспорт
	rateLimiter := middleware.NewRateLimiter(rdb)
	auth := middleware.AuthMiddleware(tokenManager, userRepo)

	router := handlers.NewRouter(
		handlers.NewCourseHandler(courseUC),
		handlers.NewUserHandler(userUC),
		handlers.NewOrderHandler(orderUC),
		handlers.NewNotificationHandler(notificationUC),
		auth,
		rateLimiter,
		strings.Split(cfg.AllowedOrigins, ","),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logg.Info("Server running", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("Failed to run server", "err", err)
		}
	}()

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Server forced to shutdown", "err", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logg.Error("Mongo disconnect failed", "err", err)
	}
	logg.Info("Server stopped")
}
