package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Brownie44l1/harvest/internal/catalog"
	"github.com/Brownie44l1/harvest/internal/config"
	"github.com/Brownie44l1/harvest/internal/fertilizer"
	"github.com/Brownie44l1/harvest/internal/handlers"
	"github.com/Brownie44l1/harvest/internal/model"
	"github.com/Brownie44l1/harvest/internal/weather"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// A missing .env is normal outside development.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}

	wd, err := os.Getwd()
	if err != nil {
		logger.Fatal("Failed to get working directory", zap.Error(err))
	}
	cfg.Anchor(config.ProjectRoot(wd))

	crop := cfg.Models.Resolve(cfg.Models.Crop)
	disease := cfg.Models.Resolve(cfg.Models.Disease)
	logger.Info("loading models",
		zap.String("crop", crop.Model),
		zap.String("disease", disease.Model),
	)

	store, err := model.Open(model.StoreConfig{
		SharedLibrary: cfg.Models.SharedLibrary,
		Crop:          model.ArtifactPaths(crop),
		Disease:       model.ArtifactPaths(disease),
	})
	if err != nil {
		logger.Fatal("Failed to initialize model store", zap.Error(err))
	}
	defer store.Close()

	logger.Info("models loaded",
		zap.Strings("crops", store.CropLabels()),
		zap.Int("image_size", store.DiseaseImage().Size),
	)

	table, err := loadFertilizerTable(cfg.Fertilizer.Table)
	if err != nil {
		logger.Fatal("Failed to load fertilizer table", zap.Error(err))
	}

	cat, err := catalog.Default()
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	client, err := weather.NewClient(weather.Config{
		APIKey:      cfg.Weather.APIKey,
		CurrentURL:  cfg.Weather.CurrentURL,
		ForecastURL: cfg.Weather.ForecastURL,
		IconURL:     cfg.Weather.IconURL,
		Timezone:    cfg.Weather.Timezone,
		Timeout:     cfg.Weather.Timeout,
	}, logger.Named("weather"))
	if err != nil {
		logger.Fatal("Failed to create weather client", zap.Error(err))
	}
	weatherSource := weather.NewRateLimited(client, cfg.Weather.RateLimit, cfg.Weather.RateBurst)

	handler, err := handlers.NewHandler(store, weatherSource, table, cat, logger.Named("http"), handlers.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})
	if err != nil {
		logger.Fatal("Failed to create handlers", zap.Error(err))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-shutdownChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}

func loadFertilizerTable(path string) (*fertilizer.Table, error) {
	if path == "" {
		return fertilizer.Default()
	}
	return fertilizer.LoadFile(path)
}
