// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/anirudhpai/event-registration-api/internal/clock"
	"github.com/anirudhpai/event-registration-api/internal/config"
	"github.com/anirudhpai/event-registration-api/internal/database"
	"github.com/anirudhpai/event-registration-api/internal/handler"
	"github.com/anirudhpai/event-registration-api/internal/repository"
	"github.com/anirudhpai/event-registration-api/internal/service"
	"github.com/anirudhpai/event-registration-api/migrations"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()

	// ── 1. Load config and connect to PostgreSQL ──────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("connected to PostgreSQL")

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	clk := clock.NewSystem()
	pages := service.Pagination{DefaultSize: cfg.DefaultPageSize, MaxSize: cfg.MaxPageSize}

	eventRepo := repository.NewEventRepository(pool)
	attendeeRepo := repository.NewAttendeeRepository(pool)
	eventSvc := service.NewEventService(eventRepo, attendeeRepo, clk, pages)
	regSvc := service.NewRegistrationService(eventRepo, attendeeRepo, clk, pages)
	eventHandler := handler.NewEventHandler(eventSvc, regSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer)   // recover from panics, return 500
	r.Use(chimiddleware.RequestID)   // attach request IDs
	r.Use(chimiddleware.RealIP)      // trust X-Forwarded-For
	r.Use(handler.Logger)            // access log
	r.Use(handler.CORS(cfg.CORSOrigins))

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/events", func(r chi.Router) {
		r.Post("/", eventHandler.CreateEvent)
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Patch("/{id}", eventHandler.UpdateEvent)
		r.Delete("/{id}", eventHandler.DeleteEvent)
		r.Post("/{id}/register", eventHandler.Register)
		r.Get("/{id}/attendees", eventHandler.ListAttendees)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
