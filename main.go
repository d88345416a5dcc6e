package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/transreserve/trip-reservations/config"
	"github.com/transreserve/trip-reservations/internal/cache"
	"github.com/transreserve/trip-reservations/internal/consumer"
	"github.com/transreserve/trip-reservations/internal/handler"
	"github.com/transreserve/trip-reservations/internal/middleware"
	"github.com/transreserve/trip-reservations/internal/repository"
	"github.com/transreserve/trip-reservations/internal/service"
	"github.com/transreserve/trip-reservations/pkg/database"
	"github.com/transreserve/trip-reservations/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Optional Redis snapshot cache for the trip list.
	var tripCache service.TripCache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Duration(cfg.CacheTTLSec)*time.Second)
		defer redisCache.Close()
		tripCache = redisCache
	}

	// RabbitMQ publisher: trip and reservation changes go out as messages.
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	tripRepo := repository.NewTripRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	// Services
	availability := service.NewAvailabilityService(tripRepo, tripCache, publisher)
	reservationSvc := service.NewReservationService(reservationRepo, tripRepo, availability, publisher)

	// RabbitMQ consumer: the trip feed that keeps the live view current.
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	tripConsumer := consumer.NewTripConsumer(tripRepo, availability)
	tripConsumer.Start(msgs)

	// Initial snapshot before the first feed message arrives.
	availability.Refresh(context.Background())

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "trip-reservations"})
	})

	handler.NewTripHandler(availability).RegisterRoutes(e, cfg.Dev())
	handler.NewReservationHandler(reservationSvc).RegisterRoutes(e, middleware.JWTAuth(cfg.JWTSecret))

	log.Printf("Trip Reservations starting on :%s (env=%s)", cfg.ServerPort, cfg.Env)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
