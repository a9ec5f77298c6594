package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/steezeapp/steeze-backend/internal/config"
	"github.com/steezeapp/steeze-backend/internal/db"
	httpHandlers "github.com/steezeapp/steeze-backend/internal/http/handlers"
	httpRouter "github.com/steezeapp/steeze-backend/internal/http/router"
	"github.com/steezeapp/steeze-backend/internal/logger"
	"github.com/steezeapp/steeze-backend/internal/repository"
	"github.com/steezeapp/steeze-backend/internal/service"
	"github.com/steezeapp/steeze-backend/internal/storage"
	"github.com/steezeapp/steeze-backend/internal/weather"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	wardrobeRepo := repository.NewWardrobeRepository(dbConn)
	outfitRepo := repository.NewOutfitRepository(dbConn)

	// Погодный клиент опционален: без ключа образы собираются без погоды.
	var weatherClient *weather.Client
	var weatherSrc service.WeatherSource
	if cfg.OpenWeatherAPIKey != "" {
		weatherClient = weather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.WeatherTimeout)
		weatherSrc = weatherClient
	}

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	selector := service.NewOutfitSelector(rand.New(rand.NewSource(time.Now().UnixNano())))
	outfitService := service.NewOutfitService(wardrobeRepo, outfitRepo, weatherSrc, selector)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(userRepo, authService)
	wardrobeHandler := httpHandlers.NewWardrobeHandler(wardrobeRepo, photoStorage)
	outfitHandler := httpHandlers.NewOutfitHandler(outfitService)
	weatherHandler := httpHandlers.NewWeatherHandler(weatherClient)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, cfg.MediaStoragePath)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, profileHandler, wardrobeHandler, outfitHandler, weatherHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
