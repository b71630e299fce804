package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carelink/telemed-scheduling/internal/api"
	"github.com/carelink/telemed-scheduling/internal/appointment"
	"github.com/carelink/telemed-scheduling/internal/config"
	"github.com/carelink/telemed-scheduling/internal/db"
	"github.com/carelink/telemed-scheduling/internal/notification"
	redisclient "github.com/carelink/telemed-scheduling/internal/redis"
	"github.com/carelink/telemed-scheduling/internal/schedule"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis; without it, booking falls back to the store's
	// uniqueness constraint alone.
	var locker redisclient.Locker = redisclient.NoopLocker{}
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Printf("redis unavailable, slot locking disabled: %v", err)
		rdb = nil
	} else {
		locker = redisclient.NewRedisLocker(rdb, cfg.LockTTL)
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")
	}

	// Wire the engine
	notifRepo := notification.NewPgRepository(pgPool)
	directory := notification.NewPgDirectory(pgPool)

	var emails notification.EmailSender = notification.NopSender{}
	if cfg.SendGridAPIKey != "" {
		emails = notification.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.SendGridName)
		log.Println("sendgrid email fan-out enabled")
	}
	notifications := notification.NewService(notifRepo, emails, directory)

	apptRepo := appointment.NewPgRepository(pgPool)
	schedules := schedule.NewService(schedule.NewPgRepository(pgPool), apptRepo)
	appointments := appointment.NewService(apptRepo, schedules, locker, notifications)

	router := api.NewRouter(api.RouterConfig{
		Schedules:     schedules,
		Appointments:  appointments,
		Notifications: notifications,
		Roster:        directory,
		PgPool:        pgPool,
		Redis:         rdb,
		Metrics:       api.NewMetrics(prometheus.DefaultRegisterer),
		PollInterval:  cfg.NotifyPollInterval,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
