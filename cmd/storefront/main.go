package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_storefront/internal/server/cache"
	serverhttp "github.com/fjod/go_storefront/internal/server/http"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/fjod/go_storefront/internal/server/service"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	MongoMaxPool    uint64
	MongoMinPool    uint64
	RedisAddr       string
	JWTSecret       string
	TokenTTL        time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "storefront"),
		MongoMaxPool:    getEnvUint("MONGO_MAX_POOL_SIZE", 0),
		MongoMinPool:    getEnvUint("MONGO_MIN_POOL_SIZE", 0),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:        24 * time.Hour,
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
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		log.Printf("ignoring invalid %s=%q: %v", key, value, err)
		return defaultValue
	}
	return n
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Mongo when configured, in-memory otherwise.
	var repo repository.Repository
	if cfg.MongoURI != "" {
		db, err := repository.ConnectMongoDB(ctx, repository.MongoConfig{
			URI:         cfg.MongoURI,
			Database:    cfg.MongoDatabase,
			MaxPoolSize: cfg.MongoMaxPool,
			MinPoolSize: cfg.MongoMinPool,
		})
		if err != nil {
			log.Fatalf("failed to connect to MongoDB: %v", err)
		}
		repo, err = repository.NewMongoRepository(ctx, db)
		if err != nil {
			log.Fatalf("failed to prepare MongoDB repository: %v", err)
		}
		log.Printf("using MongoDB at %s", cfg.MongoURI)
	} else {
		mem := repository.NewMemoryRepository()
		if err := seedDemoData(ctx, mem); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		repo = mem
		log.Println("MONGO_URI not set, using in-memory store with demo data")
	}

	var cartCache cache.CartCache = cache.NopCache{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to ping Redis: %v", err)
		}
		defer client.Close()
		cartCache = cache.NewRedisCache(client)
		log.Printf("using Redis at %s", cfg.RedisAddr)
	}

	issuer := serverhttp.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	router := serverhttp.NewRouter(serverhttp.RouterConfig{
		Repo:           repo,
		Carts:          service.NewCartService(repo, repo, cartCache),
		Orders:         service.NewOrderService(repo, repo),
		Issuer:         issuer,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront backend starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
