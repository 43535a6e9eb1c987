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

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/scolaris/tuition-engine/internal/config"
	"github.com/scolaris/tuition-engine/internal/handler"
	"github.com/scolaris/tuition-engine/internal/repository"
	"github.com/scolaris/tuition-engine/internal/service"
	"github.com/scolaris/tuition-engine/internal/store"
	"github.com/scolaris/tuition-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Record store: postgres when configured, in-memory otherwise (offline
	// single-operator mode).
	var (
		recordStore store.Store
		db          *sqlx.DB
	)
	if cfg.Database.URL != "" {
		db, err = initDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		pg := store.NewPostgres(db)
		if err := pg.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate record store: %v", err)
		}
		recordStore = pg
	} else {
		log.Println("DATABASE_URL not set, running on the in-memory store")
		recordStore = store.NewMemory()
	}

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = initRedis(cfg)
		defer redisClient.Close()
	}

	// Repositories
	students := repository.NewStudentRepository(recordStore)
	classes := repository.NewClassRepository(recordStore)
	schedules := repository.NewScheduleRepository(recordStore)
	payments := repository.NewPaymentRepository(recordStore)
	credits := repository.NewCreditRepository(recordStore)
	audit := repository.NewAuditRepository(recordStore)

	// Services
	situationService := service.NewSituationService(students, classes, schedules, payments)
	paymentService := service.NewPaymentService(
		situationService, payments, credits, audit,
		cfg.GetCreditMatchEpsilon(), cfg.Business.DefaultOperator,
	)
	alertService := service.NewAlertService(students, situationService, redisClient, cfg.Business.AlertLookaheadDays)

	billingHandler := handler.NewBillingHandler(paymentService, situationService, alertService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	router := setupRoutes(billingHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(billingHandler *handler.BillingHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/students/{studentId}/situation", billingHandler.GetSituation).Methods("GET")
	api.HandleFunc("/students/{studentId}/payments", billingHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/payments/{paymentId}/cancel", billingHandler.CancelPayment).Methods("POST")
	api.HandleFunc("/alerts", billingHandler.GetAlerts).Methods("GET")
	api.HandleFunc("/notices", billingHandler.GetNotices).Methods("GET")

	return router
}
