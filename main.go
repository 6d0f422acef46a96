package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookstore-service/handlers"
	"bookstore-service/internal/books"
	"bookstore-service/internal/cart"
	"bookstore-service/internal/checkout"
	"bookstore-service/internal/database"
	"bookstore-service/internal/orders"
	"bookstore-service/internal/stores/kafka"
	"bookstore-service/middleware"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const cartTTL = 7 * 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	if err := run(); err != nil {
		slog.Error("service exited with error", slog.String("Error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		return err
	}
	slog.Info("database ready")

	booksConf, err := books.NewConf(db)
	if err != nil {
		return err
	}
	ordersConf, err := orders.NewConf(db)
	if err != nil {
		return err
	}

	cartStore, err := newCartStore(ctx)
	if err != nil {
		return err
	}

	kafkaConf := newKafkaConf()
	if kafkaConf != nil {
		defer kafkaConf.Close()
	}

	mid, err := middleware.NewMid()
	if err != nil {
		return err
	}

	engine := checkout.NewEngine(&booksConf, &ordersConf)
	router := handlers.API("/v1", mid, &booksConf, cartStore, engine, &ordersConf, kafkaConf)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("Port", port))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// newCartStore picks redis when configured, otherwise an in-process store
// good enough for a single instance.
func newCartStore(ctx context.Context) (cart.Store, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, carts held in process memory")
		return cart.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	slog.Info("redis ready", slog.String("Addr", addr))
	return cart.NewRedisStore(client, cartTTL), nil
}

// newKafkaConf returns nil when no broker is configured; order events are
// then skipped.
func newKafkaConf() *kafka.Conf {
	brokers := os.Getenv("KAFKA_BROKER")
	if brokers == "" {
		slog.Warn("KAFKA_BROKER not set, order events disabled")
		return nil
	}
	conf, err := kafka.NewConf(strings.Split(brokers, ","))
	if err != nil {
		slog.Error("failed to connect kafka, order events disabled",
			slog.String("Error", err.Error()))
		return nil
	}
	return conf
}
