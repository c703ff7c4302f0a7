package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/internity/storefront/internal/catalog"
	"github.com/internity/storefront/internal/checkout"
	"github.com/internity/storefront/internal/events"
	h "github.com/internity/storefront/internal/http"
	"github.com/internity/storefront/internal/repository"
	"github.com/internity/storefront/internal/session"
)

type Config struct {
	HTTPPort        string
	StateBackend    string // redis | mongo | memory
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	MongoURI        string
	MongoDBName     string
	MongoMaxPool    uint64
	MongoMinPool    uint64
	KafkaBrokers    string // empty disables event publishing
	CatalogDBPath   string
	MigrationsPath  string
	CheckoutDelay   time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		log.Printf("invalid REDIS_DB, using 0: %v", err)
		redisDB = 0
	}

	checkoutDelay := checkout.DefaultProcessingDelay
	if raw := os.Getenv("CHECKOUT_DELAY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("invalid CHECKOUT_DELAY %q, using default: %v", raw, err)
		} else {
			checkoutDelay = d
		}
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StateBackend:    getEnv("STATE_BACKEND", "redis"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "internity_storefront"),
		MongoMaxPool:    getEnvUint("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPool:    getEnvUint("MONGO_MIN_POOL_SIZE", 10),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", "./storefront.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		CheckoutDelay:   checkoutDelay,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Printf("invalid %s %q, using %d: %v", key, raw, defaultValue, err)
		return defaultValue
	}
	return value
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := loadConfig()

	carts, wishlists, cleanup, err := connectStateBackend(cfg)
	if err != nil {
		log.Fatalf("failed to connect state backend: %v", err)
	}
	defer cleanup()

	// Catalog database
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run catalog migrations: %v", err)
	}
	log.Println("catalog migrations completed")

	// Checkout event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		log.Printf("publishing checkout events to %s", cfg.KafkaBrokers)
	}
	defer publisher.Close()

	sessions := session.NewManager(carts, wishlists)
	defer sessions.Close()

	checkoutService := checkout.NewService(publisher, cfg.CheckoutDelay)

	router := h.NewRouter(sessions, catalogRepo, checkoutService, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s (state backend: %s)", cfg.HTTPPort, cfg.StateBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// connectStateBackend wires the cart and wishlist repositories for the
// configured backend. The returned cleanup closes the underlying connection.
func connectStateBackend(cfg *Config) (repository.CartRepository, repository.WishlistRepository, func(), error) {
	switch cfg.StateBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, nil, err
		}
		log.Printf("connected to Redis at %s", cfg.RedisAddr)

		cleanup := func() {
			if err := client.Close(); err != nil {
				log.Printf("failed to close Redis client: %v", err)
			}
		}
		return repository.NewRedisCartRepository(client), repository.NewRedisWishlistRepository(client), cleanup, nil

	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err := repository.ConnectMongo(ctx, repository.MongoConfig{
			URI:         cfg.MongoURI,
			Database:    cfg.MongoDBName,
			MaxPoolSize: cfg.MongoMaxPool,
			MinPoolSize: cfg.MongoMinPool,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("connected to MongoDB database %s", cfg.MongoDBName)

		state := repository.NewMongoStateRepository(db)
		if err := state.CreateIndexes(ctx); err != nil {
			return nil, nil, nil, err
		}

		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(disconnectCtx); err != nil {
				log.Printf("failed to disconnect MongoDB: %v", err)
			}
		}
		return state.Carts(), state.Wishlists(), cleanup, nil

	case "memory":
		log.Println("using in-memory state backend, session state will not survive a restart")
		state := repository.NewMemoryStateRepository()
		return state.Carts(), state.Wishlists(), func() {}, nil

	default:
		return nil, nil, nil, errors.New("unknown STATE_BACKEND: " + cfg.StateBackend)
	}
}
