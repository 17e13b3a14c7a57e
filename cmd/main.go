package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"net/http"
	"os/signal"
	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/consumer"
	"storefront/internal/mailer"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/worker"
	"storefront/migrations"
	"sync"
	"syscall"
	"time"
)

func connectDB(dsn, name string, retries int) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < retries; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to DB %s", name)
				return db, nil
			}
		}
		log.Warn().Msgf("Retry %d: failed to connect to DB %s: %v", i+1, name, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s after retries: %w", name, err)
}

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := connectDB(cfg.MySQLDSN(), cfg.DBName, cfg.DBRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("Database unavailable")
	}
	defer db.Close()

	if err := migrations.AutoMigrate(3, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate tables")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	kafkaWriter := config.NewKafkaWriter(cfg.OrderTopic)
	defer kafkaWriter.Close()

	// Repositories
	productRepo := repository.NewProductRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	tagRepo := repository.NewTagRepository(db)
	cartRepo := repository.NewCartRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Listeners run after an order is committed
	publisher := notify.NewKafkaPublisher(kafkaWriter)
	dispatcher := notify.NewDispatcher(4, 5*time.Second)
	dispatcher.Register("kafka", publisher.OrderCreated)
	dispatcher.Register("log", notify.LogListener)

	// Services
	productService := service.NewProductService(productRepo, repository.NewProductCache(rdb, 5*time.Minute))
	collectionService := service.NewCollectionService(collectionRepo)
	reviewService := service.NewReviewService(db, reviewRepo, productRepo, tagRepo)
	cartService := service.NewCartService(db, cartRepo, productRepo)
	customerService := service.NewCustomerService(customerRepo)
	userService := service.NewUserService(db, userRepo, customerRepo, cfg.JWTSecret, cfg.JWTTTL)
	orderService := service.NewOrderService(db, orderRepo, cartRepo, customerRepo, dispatcher,
		repository.NewIdempotencyKeys(rdb, repository.OrderIdempotencyPrefix))

	// Background workers
	var wg sync.WaitGroup

	orderConsumer := consumer.NewConsumer(
		config.NewKafkaReader(cfg.OrderTopic, "storefront-mailer"),
		customerService,
		mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom),
	)
	sweeper := worker.NewCartSweeper(cartService, cfg.CartTTL, cfg.CartSweepInterval)

	wg.Add(2)
	go func() {
		defer wg.Done()
		orderConsumer.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	// Initialize echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewRequestValidator()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	api.RegisterRoutes(e, api.Handlers{
		Products:    api.NewProductHandler(productService, reviewService),
		Collections: api.NewCollectionHandler(collectionService),
		Carts:       api.NewCartHandler(cartService),
		Customers:   api.NewCustomerHandler(customerService, userService),
		Orders:      api.NewOrderHandler(orderService),
	}, api.JWTMiddleware(cfg.JWTSecret))

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}

	wg.Wait()
	log.Info().Msg("Bye")
}
