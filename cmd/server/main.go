package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"botdeck/internal/bot"
	"botdeck/internal/bot/repository"
	botservice "botdeck/internal/bot/service"
	bothttp "botdeck/internal/bot/transport/http"
	"botdeck/internal/config"
	"botdeck/internal/eventlog"
	"botdeck/internal/logger"
	"botdeck/internal/metrics"
	"botdeck/internal/settings"
	settingshttp "botdeck/internal/settings/transport/http"
	"botdeck/internal/stats"
	"botdeck/pkg/middleware"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("botdeck API starting", zap.String("addr", cfg.Addr))

	metrics.InitMetrics()

	// Stores and services
	events := eventlog.NewSink()
	initial := settings.SystemConfig{
		WebhookPassphrase: cfg.WebhookPassphrase,
		WebhookURL:        cfg.WebhookURL,
	}
	if cfg.SeedDemo {
		initial.Accounts = []settings.ExchangeAccount{
			{
				ID:        "acc_1",
				Name:      "Binance Main (Futures)",
				Exchange:  settings.ExchangeBinance,
				APIKey:    "***",
				APISecret: "***",
			},
		}
	}
	store := settings.NewStore(initial, events, log)
	tracker := stats.NewTracker()
	repo := repository.NewMemory()
	svc := botservice.New(repo, store, events, tracker, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedDemo {
		seedDemo(ctx, svc, events, tracker, log)
	}

	// Price drift runs on its own tick so registry reads stay pure.
	go svc.RunDrift(ctx, cfg.DriftInterval)

	botHandler := bothttp.NewHandler(svc, events, log)
	settingsHandler := settingshttp.NewHandler(store, svc, log)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow, log)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)
	r.Use(middleware.ValidateRequest)
	r.Use(limiter.Middleware)

	r.Get("/bots", botHandler.ListBots)
	r.Post("/bots", botHandler.CreateBot)
	r.Patch("/bots/{id}", botHandler.ToggleBot)
	r.Delete("/bots/{id}", botHandler.DeleteBot)
	r.Post("/webhook", botHandler.Webhook)
	r.Get("/logs", botHandler.GetLogs)
	r.Get("/stats", botHandler.GetStats)
	r.Get("/symbols", botHandler.GetSymbols)
	r.Get("/config", settingsHandler.GetConfig)
	r.Put("/config", settingsHandler.UpdateConfig)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server running", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// seedDemo provisions the out-of-the-box dashboard: one bot and a couple
// of startup log lines, so the UI has something to show before the first
// manual configuration. The matching demo account is part of the store's
// initial config.
func seedDemo(ctx context.Context, svc *botservice.Service, events *eventlog.Sink, tracker *stats.Tracker, log *zap.Logger) {
	demo := bot.Bot{
		ID:               "BTC_PRO_SCALPER",
		AccountID:        "acc_1",
		AccountName:      "Binance Main (Futures)",
		Symbol:           "BTCUSDT",
		Side:             futures.SideTypeBuy,
		OrderType:        futures.OrderTypeMarket,
		Leverage:         20,
		OrderAmount:      50,
		StopLoss:         1.5,
		TakeProfit:       3.0,
		CurrentPrice:     67450.20,
		TotalRealizedPnL: 24.50,
		IsActive:         true,
		SignalCount:      12,
		TotalOrders:      8,
		CreatedAt:        time.Now().UTC(),
	}
	if err := svc.Seed(ctx, demo); err != nil {
		log.Warn("demo seed failed", zap.Error(err))
	}

	tracker.Seed(12.40, 245.80, 85400)
	events.Append(eventlog.LevelInfo, "Binance Futures API v2 protocol active.")
	events.Append(eventlog.LevelSuccess, "API connection verified: recvWindow=5000ms")
	log.Info("demo data seeded")
}
