package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"example.com/workoutcal/internal/api"
	"example.com/workoutcal/internal/auth"
	"example.com/workoutcal/internal/calendar"
	"example.com/workoutcal/internal/config"
	"example.com/workoutcal/internal/merge"
	"example.com/workoutcal/internal/observability"
	"example.com/workoutcal/internal/persistence/sqlite"
	httptransport "example.com/workoutcal/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open workout store: %v", err)
	}
	defer store.Close()

	cal := calendar.New(cfg.CalendarName)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	events, err := store.LoadAll(loadCtx)
	loadCancel()
	if err != nil {
		log.Fatalf("failed to load stored workouts: %v", err)
	}
	for _, ev := range events {
		cal.Add(ev)
	}
	observability.SetCalendarSize(cal.Len())
	log.Printf("loaded %d calendar events from %s", cal.Len(), cfg.DatabasePath)

	merger := merge.NewCoordinator(store)
	handler := api.NewHandler(merger, cal)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Browser-based calendar previews fetch the feed cross-origin.
	corsHandler := cors.Default().Handler(mux)
	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.APIKey})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, authMiddleware.Wrap(corsHandler))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("workoutcal listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
