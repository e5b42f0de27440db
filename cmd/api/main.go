package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	_ "storefront/docs"
	"storefront/pkg/auth"
	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/catalog/cache"
	"storefront/pkg/config"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	"storefront/pkg/otel"
)

const serviceName = "storefront"

// @title Storefront API
// @version 1.0
// @description Catalog, cart, checkout and order management for the storefront
// @host localhost:8443
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, logger.LevelError, serviceName, nil).Error(ctx, "load config", "error", err)
		return err
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logger.LevelInfo
	}
	log := logger.New(os.Stdout, level, serviceName, otel.GetTraceID)
	defer log.Sync()

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: serviceName,
		Host:        cfg.OTELHost,
		Exporter:    cfg.OTELExporter,
		Probability: cfg.TraceProbability,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		return err
	}
	defer shutdownTracing(context.Background())

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Error(ctx, "open stores", "driver", cfg.StoreDriver, "error", err)
		return err
	}
	defer st.close(context.Background())

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error(ctx, "redis ping", "addr", cfg.RedisAddr, "error", err)
		return err
	}

	products := st.products
	if cfg.ProductCacheTTL > 0 {
		products = cache.New(products, redisClient, cfg.ProductCacheTTL, log)
	}

	authSvc := auth.NewService(st.accounts, auth.NewSessionStore(redisClient, cfg.SessionTTL), log)
	if cfg.AdminEmail != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error(ctx, "bootstrap admin", "error", err)
			return err
		}
	}

	s := &server{
		log:      log,
		tracer:   tp.Tracer(serviceName),
		auth:     authSvc,
		authn:    authSvc,
		products: catalog.NewService(products, log),
		carts:    cart.NewService(st.accounts, products, log),
		orders:   order.NewService(st.orders, products, st.accounts, log),
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "tls", cfg.TLS(), "driver", cfg.StoreDriver)
		if cfg.TLS() {
			serveErr <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		serveErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server closed", "error", err)
			return err
		}
	case sig := <-stop:
		log.Info(ctx, "shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutdown", "error", err)
		return err
	}
	return nil
}
