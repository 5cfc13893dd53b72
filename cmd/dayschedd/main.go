package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
	"github.com/wheelibin/daysched/internal/config"
	"github.com/wheelibin/daysched/internal/events"
	"github.com/wheelibin/daysched/internal/logging"
	"github.com/wheelibin/daysched/internal/runner"
	"github.com/wheelibin/daysched/internal/schedule"
)

func main() {
	configFile := flag.StringP("config", "c", "", "config file (default: search /etc/daysched, ~/.config/daysched, .)")
	flag.Parse()

	if err := config.InitialiseConfig(*configFile); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("dayschedd starting", "schedules", len(cfg.Schedules))

	// create/wire up services
	ss := schedule.NewScheduleService(logger, cfg.GeoLocation)
	publisher := events.NewSSEPublisher(logger)
	r := runner.NewRunner(logger, cfg.Schedules, ss, publisher)

	if err := r.Initialise(time.Now()); err != nil {
		logger.Fatal("unable to start", "err", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/events", publisher)
	mux.HandleFunc("/schedules", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(r.Snapshot()); err != nil {
			logger.Error("Error writing schedule states", "err", err)
		}
	})
	server := &http.Server{Addr: cfg.ListenAddress, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Listening", "address", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "err", err)
			stop()
		}
	}()

	// blocks until a stop signal is received
	r.Run(ctx)

	// cleanup before exit
	publisher.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "err", err)
	}
	fmt.Fprintln(os.Stderr, "dayschedd is closing")
}
