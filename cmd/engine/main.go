package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"HeatPilot/internal/config"
	"HeatPilot/internal/device"
	"HeatPilot/internal/engine"
	"HeatPilot/internal/metrics"
	"HeatPilot/internal/pricefeed"
	"HeatPilot/internal/recorder"
	"HeatPilot/internal/scheduler"
	"HeatPilot/internal/server"
	"HeatPilot/internal/store"
	"HeatPilot/internal/weather"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] HeatPilot starting...")

	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init collaborator clients
	dev := device.NewHTTPClient(cfg.Device.BaseURL, cfg.Device.APIKey, cfg.Proxy)
	prices := pricefeed.NewHTTPProvider(cfg.Prices.BaseURL, cfg.Prices.APIKey, cfg.Proxy)
	forecast := weather.NewHTTPProvider(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Proxy)
	log.Printf("[INFO] device: %s, price area: %s", dev.Name(), cfg.Prices.Area)

	// Init learned-state store
	st, err := store.New(cfg.State.Dir)
	if err != nil {
		log.Fatalf("[FATAL] init state store: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	met := metrics.NewCollector("heatpilot")

	eng, err := engine.New(cfg, dev, prices, forecast, st, rec, met)
	if err != nil {
		log.Fatalf("[FATAL] init engine: %v", err)
	}

	// Init scheduler
	sched := scheduler.New(cfg, eng)
	if err := sched.Start(); err != nil {
		log.Fatalf("[FATAL] start scheduler: %v", err)
	}
	defer sched.Stop()

	// Init HTTP server
	srv := server.New(cfg.Server.ListenAddr, eng)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing tick now")
		go sched.RunTickNow()
	}

	log.Println("[INFO] HeatPilot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] HeatPilot stopped")
}
