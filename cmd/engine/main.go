package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/curvematch/pkg/http"
	"github.com/lintang-b-s/curvematch/pkg/http/usecases"
	"github.com/lintang-b-s/curvematch/pkg/logger"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	dbPath       = flag.String("db", "", "sqlite route library path (default DB_PATH)")
	workers      = flag.Int("workers", 0, "goroutines scoring candidates per request (default MATCH_WORKERS)")
	useRateLimit = flag.Bool("rate_limit", false, "enable the token bucket rate limiter (or USE_RATE_LIMIT)")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	util.SetDefaults()
	http.SetMatchingDefaults()
	if err := util.ReadConfig(); err != nil {
		logger.Fatal("read config", zap.Error(err))
	}
	if *dbPath != "" {
		viper.Set("DB_PATH", *dbPath)
	}
	if *workers > 0 {
		viper.Set("MATCH_WORKERS", *workers)
	}

	routeStore, err := store.NewRouteStore(viper.GetString("DB_PATH"), logger)
	if err != nil {
		logger.Fatal("open route store", zap.Error(err))
	}
	defer routeStore.Close()

	matchingService := usecases.NewMatchingService(logger, routeStore, viper.GetInt("MATCH_WORKERS"),
		viper.GetInt("GRADIENT_CACHE_SIZE"))
	libraryService := usecases.NewLibraryService(logger, routeStore)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	// warm the first snapshot so the first match request does not pay for it
	if _, err := matchingService.Snapshot(ctx); err != nil {
		logger.Fatal("build matching engine", zap.Error(err))
	}

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, logger, *useRateLimit || viper.GetBool("USE_RATE_LIMIT"),
		matchingService, libraryService); err != nil {
		logger.Fatal("start api", zap.Error(err))
	}

	signal := http.GracefulShutdown()

	logger.Info("curvematch server stopping", zap.String("signal", signal.String()))
	cleanup()
	if err := api.Wait(); err != nil {
		logger.Error("api", zap.Error(err))
	}
	logger.Info("curvematch server stopped")
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
