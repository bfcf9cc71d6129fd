package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chopline-be/internal/api"
	"chopline-be/internal/cart"
	"chopline-be/internal/config"
	"chopline-be/internal/db"
	"chopline-be/internal/delivery"
	"chopline-be/internal/logger"
	"chopline-be/internal/order"
	"chopline-be/internal/payment"
	"chopline-be/internal/payment/webhook"
	"chopline-be/internal/realtime"
	"chopline-be/internal/reconcile"
	"chopline-be/internal/stats"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	gateway := payment.NewFlutterwaveGateway(cfg.FlutterwaveKey)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, gateway)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo)

	aggregator := stats.NewAggregator(database)

	deliveryRepo := delivery.NewRepository(database)
	deliverySvc := delivery.NewService(deliveryRepo, orderRepo, aggregator)

	flow := reconcile.NewFlow(gateway, orderSvc, cartSvc)

	hub := realtime.NewHub()
	listener := realtime.NewListener(cfg.DSN(), hub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Error("realtime listener exited", zap.Error(err))
		}
	}()

	router := api.NewRouter(api.Handlers{
		Orders:     api.NewOrderHandler(orderSvc),
		Deliveries: api.NewDeliveryHandler(deliverySvc),
		Payments:   api.NewPaymentHandler(flow),
		Carts:      api.NewCartHandler(cartSvc),
		Stats:      api.NewStatsHandler(aggregator),
		Webhook:    webhook.NewWebhookHandler(gateway, flow),
		Realtime:   realtime.NewWSHandler(hub),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		log.Printf("server running at http://localhost:%s/", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.L().Info("server stopped")
}
