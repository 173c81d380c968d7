package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/technosupport/ts-apc/internal/alert"
	"github.com/technosupport/ts-apc/internal/api"
	"github.com/technosupport/ts-apc/internal/buildings"
	"github.com/technosupport/ts-apc/internal/config"
	"github.com/technosupport/ts-apc/internal/data"
	"github.com/technosupport/ts-apc/internal/edgecache"
	"github.com/technosupport/ts-apc/internal/metrics"
	"github.com/technosupport/ts-apc/internal/platform/paths"
	"github.com/technosupport/ts-apc/internal/platform/windows"
	"github.com/technosupport/ts-apc/internal/reconcile"
)

const (
	serviceName  = "TS-APC"
	eventIDStart = 100
	eventIDStop  = 101
	eventIDError = 102
)

func main() {
	// 1. Windows Service Check
	isService := windows.IsWindowsService()
	elog := windows.NewEventLogger(serviceName)
	defer elog.Close()

	if isService {
		elog.Info(eventIDStart, "Starting as Windows Service")
	}

	stopChan := make(chan struct{})
	if isService {
		go func() {
			if err := windows.RunAsService(serviceName, stopChan); err != nil {
				elog.Error(eventIDError, fmt.Sprintf("Service run error: %v", err))
				os.Exit(1)
			}
		}()
	}

	// 2. Platform Paths
	if err := paths.EnsureDirs(); err != nil {
		elog.Error(eventIDError, fmt.Sprintf("Platform init error: %v", err))
		log.Fatalf("Platform init error: %v", err)
	}

	// 3. Config
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgStore, err := config.NewStore(paths.ResolveConfigPath(os.Getenv("APC_CONFIG")))
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}
	cfgStore.StartWatcher(ctx)
	cfg := cfgStore.Current()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	redisAddr := os.Getenv("REDIS_ADDR")
	natsURL := os.Getenv("NATS_URL")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// 4. ProServer DB (Postgres, read-mostly; we only write pevReactive_FRK)
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	proDB, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("ProServer DB open error: %v", err)
	}
	if err := proDB.Ping(); err != nil {
		log.Fatalf("ProServer DB ping error: %v", err)
	}

	// 5. Local DB (SQLite: schedules, ignore flags, snapshots, history)
	localPath := paths.ResolveLocalDBPath()
	localDB, err := sql.Open("sqlite3", localPath)
	if err != nil {
		log.Fatalf("Local DB open error: %v", err)
	}
	if err := localDB.Ping(); err != nil {
		log.Fatalf("Local DB ping error (%s): %v", localPath, err)
	}

	// 6. Edge Cache (Redis)
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	cache := edgecache.NewRedisCache(rdb)

	// 7. Models
	proServer := &data.ProServerModel{DB: proDB}
	scheduleModel := data.ScheduleModel{DB: localDB}
	snapshotModel := &data.SnapshotModel{DB: localDB}

	// 8. Metrics
	collector := metrics.NewCollector()

	// 9. Alert Dispatcher
	// The address closure reads the config store, so a config reload moves
	// the axe endpoint without a restart.
	sender := alert.NewTCPSender(cfgStore.AlertAddr, cfg.AlertTimeout())
	dispatcher := alert.NewDispatcher(sender, proServer, alert.NewDedup(256, cfg.DedupTTL()))
	dispatcher.Metrics = collector

	if natsURL != "" {
		nc, err := nats.Connect(natsURL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			log.Printf("NATS connect failed, alert mirroring disabled: %v", err)
		} else {
			defer nc.Close()
			dispatcher.Publisher = alert.NewNATSPublisher(nc, cfg.Alert.NatsSubject, 3)
			log.Printf("NATS alert mirror enabled on subject %s", cfg.Alert.NatsSubject)
		}
	}

	// 10. Reconciliation Engine
	loc, err := time.LoadLocation(cfg.Reconcile.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Reconcile.Timezone, err)
	}
	engine := reconcile.NewService(proServer, scheduleModel, snapshotModel, cache, dispatcher, loc)
	engine.Metrics = collector
	engine.History = scheduleModel

	scheduler := reconcile.NewScheduler(reconcile.SchedulerConfig{Interval: cfg.Interval()}, engine)
	scheduler.Start()

	// 11. HTTP Surface
	buildingSvc := buildings.NewService(proServer, scheduleModel)
	router := api.Router(
		&api.BuildingHandler{Service: buildingSvc, Reconciler: engine},
		&api.PanelHandler{Store: cache},
		&api.HealthHandler{ProServer: proDB, LocalDB: localDB, Cache: cache},
		collector.Handler(),
	)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s on %s (reconcile every %v, tz %s)", serviceName, cfg.Server.Addr, cfg.Interval(), cfg.Reconcile.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			elog.Error(eventIDError, fmt.Sprintf("HTTP server error: %v", err))
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for stop: service control in service mode, signals in console mode.
	if isService {
		<-stopChan
		elog.Info(eventIDStop, "Service stop requested")
	} else {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	scheduler.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		elog.Error(eventIDError, fmt.Sprintf("Graceful shutdown error: %v", err))
	}

	proDB.Close()
	localDB.Close()
	rdb.Close()

	elog.Info(eventIDStop, "Server stopped gracefully")
}
