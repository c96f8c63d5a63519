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

	"github.com/FarrukhAbbasi021/Candyapp-Backend/config"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/api"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/auth"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/service"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/util"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting candyapp backend")

	tp, err := util.InitTracer("candyapp-backend", cfg.Observ.JaegerEndpoint)
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

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migrateCancel()
	if err := db.Migrate(migrateCtx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Println("Database connected")

	sessions, err := auth.NewSessionStore(
		cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.Auth.SessionTTLSeconds)*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer sessions.Close()
	log.Println("Redis connected")

	gate, err := auth.NewGate(sessions, cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash)
	if err != nil {
		log.Fatalf("Failed to initialize auth gate: %v", err)
	}

	orderService := service.NewOrderService(db,
		time.Duration(cfg.Business.PlaceOrderTimeoutSeconds)*time.Second)
	catalogService := service.NewCatalogService(db)
	inventoryService := service.NewInventoryService(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	reconciler := worker.NewReconciler(db,
		time.Duration(cfg.Business.ReconcileIntervalSeconds)*time.Second)
	go func() {
		if err := reconciler.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Reconciler error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(orderService, catalogService, inventoryService,
		gate, cfg.Server.StaticDir, cfg.Business.OrderListDefaultPageSize)
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
	reconciler.Wait()

	log.Println("Server exited")
}
