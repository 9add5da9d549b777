// Package admin implements the internal migration endpoints.
//
// Routes (POST only, gated by the x-admin-token header):
//
//	POST /api/admin/migrate/enrollments → backfill enrollment rows for a coach
//	POST /api/admin/migrate/orphans     → sweep orphaned duplicate rows now
//
// These are operator tools, never exposed through the public Gateway.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// Store is the slice of the datastore the admin routes need.
type Store interface {
	MigrateCoachToEnrollments(ctx context.Context, coachID string) (int64, error)
	SweepOrphans(ctx context.Context) (questions, programs int64, err error)
}

// Handler holds shared dependencies for the admin routes.
type Handler struct {
	store Store
	token string
}

// NewHandler returns a configured Handler. token must be non-empty; routes
// reject every request otherwise.
func NewHandler(store Store, token string) *Handler {
	return &Handler{store: store, token: token}
}

// RegisterRoutes mounts the admin routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/admin/migrate/", h.handleMigrate)
}

// handleMigrate dispatches POST /api/admin/migrate/{action}.
func (h *Handler) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		jsonError(w, "invalid admin token", http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	switch action := parts[3]; action {
	case "enrollments":
		h.migrateEnrollments(w, r)
	case "orphans":
		h.sweepOrphans(w, r)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) migrateEnrollments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CoachID string `json:"coachId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CoachID == "" {
		jsonError(w, "body must contain coachId", http.StatusBadRequest)
		return
	}

	migrated, err := h.store.MigrateCoachToEnrollments(r.Context(), body.CoachID)
	if err != nil {
		log.Printf("[admin] migrate enrollments failed: coach=%s: %v", body.CoachID, err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	log.Printf("[admin] migrated coach %s — %d enrollment(s) created", body.CoachID, migrated)
	jsonOK(w, map[string]any{"coachId": body.CoachID, "enrollmentsCreated": migrated})
}

func (h *Handler) sweepOrphans(w http.ResponseWriter, r *http.Request) {
	questions, programs, err := h.store.SweepOrphans(r.Context())
	if err != nil {
		log.Printf("[admin] orphan sweep failed: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	log.Printf("[admin] orphan sweep — questions=%d programs=%d", questions, programs)
	jsonOK(w, map[string]any{"questionsDeleted": questions, "programsDeleted": programs})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := r.Header.Get("x-admin-token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
