package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webhook-ingestion/config"
	"webhook-ingestion/internal/api"
	"webhook-ingestion/internal/broker"
	"webhook-ingestion/internal/catalog"
	"webhook-ingestion/internal/ledger"
	"webhook-ingestion/internal/objectstore"
	"webhook-ingestion/internal/registry"
	"webhook-ingestion/internal/service"
	"webhook-ingestion/internal/util"
	"webhook-ingestion/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting webhook ingestion service")

	tp, err := util.InitTracer("webhook-ingestion", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	store, err := objectstore.NewPostgres(cfg.Storage.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to object store: %v", err)
	}
	defer store.Close()
	log.Println("Object store connected")

	eventLedger, err := ledger.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Event.DedupTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer eventLedger.Close()
	log.Println("Idempotency ledger connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicRefresh)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	refreshPublisher := broker.NewRefreshPublisher(producer)

	reconciler := catalog.NewReconciler(store, refreshPublisher, cfg.Storage.CatalogBucket, cfg.Storage.RawBucket)
	registrar := registry.NewRegistrar(eventLedger, cfg.Event.DedupTTL)
	processor := service.NewProcessor(store, eventLedger, reconciler, registrar,
		cfg.Storage.RawBucket, cfg.Storage.ProcessedBucket, cfg.Event.Version)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	webhookConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicWebhooks, cfg.Kafka.ConsumerGroup)
	webhookWorker := worker.NewWebhookWorker(webhookConsumer, processor)
	go func() {
		if err := webhookWorker.Start(workerCtx); err != nil {
			log.Printf("Webhook worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(processor)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	webhookWorker.Stop()

	log.Println("Server exited")
}
