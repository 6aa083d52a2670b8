package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_petshop/internal/cache"
	"github.com/fjod/go_petshop/internal/config"
	"github.com/fjod/go_petshop/internal/events"
	h "github.com/fjod/go_petshop/internal/http"
	"github.com/fjod/go_petshop/internal/logger"
	"github.com/fjod/go_petshop/internal/metrics"
	"github.com/fjod/go_petshop/internal/payment"
	"github.com/fjod/go_petshop/internal/repository"
	s "github.com/fjod/go_petshop/internal/service"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "petshop"

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server stopped with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, repository.ConnectOptions{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		AppName:        cfg.Mongo.AppName,
		MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		MinPoolSize:    cfg.Mongo.MinPoolSize,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoDB.Client().Disconnect(disconnectCtx); err != nil {
			log.Warn(context.Background(), "mongo disconnect failed", err)
		}
	}()
	log.Info(ctx, "connected to MongoDB database "+cfg.Mongo.Database)

	cartRepo := repository.NewMongoRepository(mongoDB, cfg.Mongo.CartsCollection)
	paymentRepo := repository.NewMongoPaymentRepository(mongoDB, cfg.Mongo.PaymentsCollection)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}
	if err := paymentRepo.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create payment indexes: %w", err)
	}
	userRepo := repository.NewMongoUserRepository(mongoDB, cfg.Mongo.UsersCollection)
	if err := userRepo.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	petRepo := repository.NewMongoPetRepository(mongoDB, cfg.Mongo.PetsCollection)
	if err := petRepo.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create pet indexes: %w", err)
	}
	productRepo := repository.NewMongoListingRepository(mongoDB, cfg.Mongo.ProductsCollection)
	breedRepo := repository.NewMongoListingRepository(mongoDB, cfg.Mongo.BreedsCollection)

	var cartCache cache.CartCache = cache.Nop{}
	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		log.Info(ctx, "redis ping succeeded")
		cartCache = cache.NewRedisCache(redisClient, cfg.Redis.TTL)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	cartService := s.NewCartService(cartRepo, cartCache, log, m)

	var publisher s.OrderEventPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Warn(context.Background(), "kafka writer close failed", err)
			}
		}()
		publisher = kafkaPublisher

		poller := events.NewPoller(cartService, log, cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.Brokers...)
		pollerDone := make(chan struct{})
		go func() {
			defer close(pollerDone)
			poller.Run(ctx)
		}()
		defer func() {
			stop()
			<-pollerDone
			poller.Close()
		}()
		log.Info(ctx, "order events go through kafka topic "+cfg.Kafka.Topic)
	} else {
		publisher = events.NewLocalPublisher(cartService)
		log.Info(ctx, "no kafka brokers configured, clearing carts in-process")
	}
	orderService := s.NewOrderService(paymentRepo, publisher, log)
	catalogService := s.NewCatalogService(productRepo, breedRepo, petRepo, log)
	userService := s.NewUserService(userRepo, log)

	if !cfg.Stripe.Enabled() {
		log.Warn(ctx, "stripe key not set, payment intents are disabled", nil)
	}
	intents := payment.NewIntentService(payment.Options{
		APIKey:      cfg.Stripe.APIKey,
		Currency:    cfg.Stripe.Currency,
		MaxFailures: cfg.Stripe.BreakerMaxFailures,
		OpenTimeout: cfg.Stripe.BreakerOpenTimeout,
	}, log)

	router := h.NewRouter(h.RouterConfig{
		Carts:          h.NewCartHandler(cartService, cfg.HTTP.RequestTimeout),
		Orders:         h.NewOrdersHandler(orderService, cfg.HTTP.RequestTimeout),
		Payments:       h.NewPaymentHandler(intents, cfg.HTTP.RequestTimeout),
		Catalog:        h.NewCatalogHandler(catalogService, cfg.HTTP.RequestTimeout),
		Users:          h.NewUserHandler(userService, cfg.HTTP.RequestTimeout),
		Log:            log,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "pet shop server starting on :"+cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(context.Background(), "server exited")
	return nil
}
