package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradeoverflow/trade-service/internal/app/background"
	"github.com/tradeoverflow/trade-service/internal/config"
	"github.com/tradeoverflow/trade-service/internal/delivery/http/handlers"
	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/kafka"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/logger"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/metrics"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/migrate"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/pebblestore"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/postgres"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/postgres/repository"
	"github.com/tradeoverflow/trade-service/internal/usecase"
	"github.com/tradeoverflow/trade-service/internal/usecase/matching"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	appLog := logger.New(cfg.LogConfig)

	// Init store
	var store domain.OrderStore
	switch cfg.MarketDB.Driver {
	case "pebble":
		pebbleStore, err := pebblestore.Open(cfg.MarketDB.Path, cfg.Matching.MaxTransactItems)
		if err != nil {
			log.Fatalf("failed to open pebble store: %v", err)
		}
		defer pebbleStore.Close()
		store = pebbleStore
	default:
		db := postgres.MustInitDB(cfg)
		if cfg.MarketDB.MigrationsPath != "" {
			if err := migrate.RunMigrations(db, cfg.MarketDB.MigrationsPath, appLog); err != nil {
				log.Fatalf("failed to run migrations: %v", err)
			}
		}
		store = repository.NewDefaultOrderStore(db, cfg.Matching.MaxTransactItems)
	}

	// Init kafka publisher
	var publisher domain.PublisherPort
	if cfg.KafkaService.Enabled {
		brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
		kafkaPublisher := kafka.NewKafkaPublisher(brokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Init metrics
	matchingMetrics := metrics.NewMatchingMetrics()

	// Init order usecase
	orderUsecase := usecase.NewDefaultOrderUsecase(store, matchingMetrics, appLog)
	// Init matching usecase
	matchingUsecase, err := matching.NewUsecase(store, publisher, matchingMetrics, appLog)
	if err != nil {
		log.Fatalf("failed to init matching usecase: %v", err)
	}

	// HTTP routing
	orderHandler := handlers.NewOrderHandler(appLog, orderUsecase)
	matchingHandler := handlers.NewMatchingHandler(appLog, matchingUsecase)

	router := chi.NewRouter()
	router.Mount("/api/v1", orderHandler.Routes())
	router.Mount("/api/v1/trades", matchingHandler.Routes())
	router.Handle("/metrics", promhttp.Handler())

	// Scheduled matching cycles
	if cfg.Matching.Auto {
		tasks := background.NewBackgroundTasks(matchingUsecase, cfg.Matching.Interval, appLog)
		tasks.StartAll(context.Background())
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("HTTP server started on %s\n", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
