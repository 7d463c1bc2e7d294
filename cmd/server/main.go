package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

type repositories struct {
	users    port.UserRepository
	products port.ProductRepository
	carts    port.CartRepository
	closers  []func() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, listenAddr, storeDriver, cartDriver, logLevel string
	flagSet := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv("STOREFRONT_CONFIG"), "path to YAML config file")
	flagSet.StringVar(&listenAddr, "listen", "", "line protocol listen address (overrides config)")
	flagSet.StringVar(&storeDriver, "store", "", "store driver: file or mysql (overrides config)")
	flagSet.StringVar(&cartDriver, "cart", "", "cart driver: memory or redis (overrides config)")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	if cartDriver != "" {
		cfg.Cart.Driver = cartDriver
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range repos.closers {
			closeFn()
		}
		logger.Info("connections closed")
	}()

	// Initialize services
	policy, err := service.NewCredentialPolicy(cfg.Credentials.Policy, cfg.Credentials.EmailDomain,
		cfg.Credentials.MinUsername, cfg.Credentials.MinPassword)
	if err != nil {
		return err
	}
	minPrice, err := cfg.MinimumPriceValue()
	if err != nil {
		return err
	}
	users := service.NewUserService(repos.users, service.NewCredentialValidator(policy), logger)
	catalog := service.NewCatalogService(repos.products, minPrice, logger)
	carts := service.NewCartService(repos.carts, catalog, logger)

	// A store that cannot be read means its format changed; refuse to start.
	seeded, err := users.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap users: %w", err)
	}
	if seeded {
		logger.Info("seeded user store")
	}
	if _, err := users.LoadAll(ctx); err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if err := catalog.Load(ctx); err != nil {
		return err
	}
	if err := repos.carts.Reset(ctx); err != nil {
		return fmt.Errorf("reset carts: %w", err)
	}
	logger.Info("stores loaded", "products", len(catalog.List()))

	// gRPC health
	grpcHandler := handler.NewGRPCHandler()
	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		grpcServer = grpc.NewServer()
		grpcHandler.Register(grpcServer)
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	// HTTP health and catalog
	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler.NewHTTPHandler(catalog).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("HTTP server error", "error", err)
			}
		}()
	}

	// Line protocol
	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	dispatcher := handler.NewDispatcher(users, catalog, carts, logger, cfg.IdleTimeout)
	served := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr)
		served <- dispatcher.Serve(ctx, listener)
	}()
	grpcHandler.SetServing(true)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var serveErr error
	select {
	case <-quit:
	case serveErr = <-served:
		logger.Error("dispatcher stopped", "error", serveErr)
	}

	logger.Info("shutting down...")
	grpcHandler.SetServing(false)

	cancel()
	if serveErr == nil {
		<-served
	}
	logger.Info("sessions closed")

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		logger.Info("HTTP server stopped")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
	}

	return serveErr
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	repos := &repositories{}

	switch cfg.Store.Driver {
	case "mysql":
		db, err := sql.Open("mysql", cfg.Store.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		logger.Info("connected to mysql")

		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		repos.users, repos.products = adapter, adapter
		repos.closers = append(repos.closers, db.Close)
	default:
		adapter := storage.NewFileAdapter(cfg.Store.UsersFile, cfg.Store.ProductsFile)
		repos.users, repos.products = adapter, adapter
	}

	switch cfg.Cart.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cart.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			for _, closeFn := range repos.closers {
				closeFn()
			}
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("connected to redis")
		repos.carts = storage.NewRedisCart(rdb)
		repos.closers = append(repos.closers, rdb.Close)
	default:
		repos.carts = storage.NewMemoryCart()
	}

	return repos, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, options))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, options))
}
