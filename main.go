package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-machine/config"
	"portfolio-machine/engine"
	"portfolio-machine/internal/api"
	"portfolio-machine/internal/app"
	"portfolio-machine/observability"
	"portfolio-machine/repository"
	"portfolio-machine/sentiment"
	"portfolio-machine/services"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; environment variables win
	_ = godotenv.Load()

	production := os.Getenv("ENV") == "production"
	observability.InitLogger(production)
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Database is required: subscriptions drive everything
	if !cfg.HasDatabase() {
		observability.Fatal("DATABASE_URL is required")
	}
	repo, err := repository.NewRepository(ctx, cfg.Database.URL)
	if err != nil {
		observability.Fatal("failed to connect to database", "error", err)
	}
	defer repo.Close()
	observability.Info("connected to database")

	if !cfg.HasAlpaca() {
		observability.Fatal("ALPACA_API_KEY and ALPACA_API_SECRET are required")
	}
	if !cfg.HasAlphaVantage() {
		observability.Fatal("ALPHA_VANTAGE_API_KEY is required")
	}

	alpaca := services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	alphaVantage := services.NewAlphaVantageService(cfg.AlphaVantage.APIKey)

	// FMP is optional; without it earnings fields stay absent
	var earnings services.EarningsServiceInterface
	if cfg.HasFMP() {
		earnings = services.NewFMPService(cfg.FMP.APIKey)
	} else {
		observability.Warn("FMP_API_KEY not set, earnings calendar disabled")
	}

	provider := services.NewInstrumentProvider(alpaca, alphaVantage, earnings,
		cfg.Engine.HistoryDays, cfg.Engine.HeadlineLimit)
	snapshotEngine := engine.NewEngine(provider, repo, cfg)

	// Bedrock is optional; without it sentiment labels stay as stored
	var refresher app.RefresherInterface
	bedrock, err := services.NewBedrockService(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID)
	if err != nil {
		observability.Warn("bedrock unavailable, sentiment refresh disabled", "error", err)
	} else {
		refresher = sentiment.NewRefresher(repo, alphaVantage, bedrock, cfg.Engine.HeadlineLimit)
	}

	application := app.New(cfg, repo, snapshotEngine, refresher)
	defer application.Shutdown()

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(2*cfg.Engine.TimeoutSeconds+10) * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("server stopped")
}
