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

	"github.com/mealplanner/backend/config"
	httpDelivery "github.com/mealplanner/backend/internal/delivery/http"
	"github.com/mealplanner/backend/internal/domain"
	"github.com/mealplanner/backend/internal/infrastructure/cache"
	"github.com/mealplanner/backend/internal/infrastructure/catalog"
	"github.com/mealplanner/backend/internal/infrastructure/logging"
	"github.com/mealplanner/backend/internal/usecase"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, !cfg.IsProduction(), os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("input_mode", cfg.Quantity.InputMode).
		Msg("starting mealplanner backend v1.0.0")

	// Initialize infrastructure dependencies
	store, err := catalog.Open(cfg.Catalog.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}

	var shoppingCache domain.CacheRepository
	switch cfg.Cache.Type {
	case "none":
		shoppingCache = cache.NewNoopCache()
	default:
		memoryCache := cache.NewMemoryCache(cache.DefaultCleanupInterval)
		defer memoryCache.Close()
		shoppingCache = memoryCache
	}

	// Initialize usecase layer
	inputMode, err := usecase.ParseInputMode(cfg.Quantity.InputMode)
	if err != nil {
		return err
	}
	displayMode, err := usecase.ParseFormatMode(cfg.Quantity.DisplayMode)
	if err != nil {
		return err
	}

	converter := usecase.NewUnitConverter(cfg.Quantity.KitchenDenominator)
	aggregator := usecase.NewAggregator(converter, logger)
	shopping := usecase.NewShoppingListService(
		store, store, store,
		shoppingCache,
		aggregator,
		usecase.ShoppingListServiceConfig{CacheTTL: cfg.Cache.TTL},
		logger,
	)

	if cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher(store, func() {
			if err := shopping.InvalidateCache(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to invalidate shopping list cache")
			}
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to watch catalog: %w", err)
		}
		defer watcher.Close()

		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("catalog watcher stopped")
			}
		}()
	}

	handler := httpDelivery.NewHandler(httpDelivery.Dependencies{
		Parser:      usecase.NewQuantityParser(inputMode),
		Formatter:   usecase.NewQuantityFormatter(cfg.Quantity.DecimalPlaces),
		Converter:   converter,
		Aggregator:  aggregator,
		Shopping:    shopping,
		DisplayMode: displayMode,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           httpDelivery.SetupRouter(cfg, handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
