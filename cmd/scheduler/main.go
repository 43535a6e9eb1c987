package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/scolaris/tuition-engine/internal/config"
	"github.com/scolaris/tuition-engine/internal/repository"
	"github.com/scolaris/tuition-engine/internal/service"
	"github.com/scolaris/tuition-engine/internal/store"
)

func main() {
	log.Println("Starting tuition alert scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required for the scheduler")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	recordStore := store.NewPostgres(db)

	students := repository.NewStudentRepository(recordStore)
	classes := repository.NewClassRepository(recordStore)
	schedules := repository.NewScheduleRepository(recordStore)
	payments := repository.NewPaymentRepository(recordStore)

	situationService := service.NewSituationService(students, classes, schedules, payments)
	alertService := service.NewAlertService(students, situationService, redisClient, cfg.Business.AlertLookaheadDays)

	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(cfg.Business.NoticeSchedule, func() {
		runAlertScan(alertService)
	}); err != nil {
		log.Fatalf("Error scheduling alert scan: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

// runAlertScan recomputes overdue and near-due alerts for every active
// student and caches the snapshot for dashboards.
func runAlertScan(alerts *service.AlertService) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := alerts.ScanAlerts(ctx)
	if err != nil {
		log.Printf("Alert scan failed: %v", err)
		return
	}

	log.Printf("Alert scan complete: %d overdue, %d upcoming", len(report.Overdue), len(report.Upcoming))

	if err := alerts.CacheSnapshot(ctx, report); err != nil {
		log.Printf("Alert snapshot cache failed: %v", err)
	}
}
