// jobmate-coach-service — Phase 5
//
// Coach catalog registration for the coaching marketplace.
// Exposes a REST API used by the Gateway to implement:
//   - register(coachId)      — grant access + duplicate/enroll, redirect
//   - enrollmentStatus query — access + landing programs for a coach page
//   - admin migrations       — legacy duplicates → enrollment rows, orphan sweep
//
// Enrollment mode (legacy duplication vs direct enrollment) is resolved per
// user from a Redis-backed feature flag. Publishes EVENT_COACH_ENROLLED to
// Redis for Gateway SSE forward. A cron sweep collects orphaned duplicate
// rows left by failed compensating deletes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmate/coach-service/internal/admin"
	"jobmate/coach-service/internal/config"
	"jobmate/coach-service/internal/db"
	"jobmate/coach-service/internal/enrollment"
	"jobmate/coach-service/internal/flags"
	"jobmate/coach-service/internal/store"
	"jobmate/coach-service/internal/sweeper"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[coach-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[coach-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[coach-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[coach-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[coach-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[coach-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[coach-service] Redis connected ✓")

	// ── Wiring ───────────────────────────────────────────────────────────────
	pg := store.NewPostgres(pool)
	resolver := flags.NewResolver(rdb, cfg.DefaultMode, nil)
	svc := enrollment.NewService(pg, resolver, enrollment.RedisPublisher{RDB: rdb}, nil)

	// ── Orphan sweeper ───────────────────────────────────────────────────────
	sw := sweeper.New(pg, cfg.SweepIntervalHours)
	if err := sw.Start(ctx); err != nil {
		log.Fatalf("[coach-service] Sweeper: %v", err)
	}
	defer sw.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	enrollment.NewHandler(svc).RegisterRoutes(mux)
	admin.NewHandler(pg, cfg.AdminToken).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[coach-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[coach-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[coach-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[coach-service] Shutdown error: %v", err)
	}
	log.Println("[coach-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "coach-service",
		"version": version,
	})
}
