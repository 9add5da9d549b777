// HTTP handlers for the registration workflow.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET /api/coach/{coachId}/register → 302 to program / onboarding / error page
//	GET /api/coach/{coachId}/status   → JSON enrollment status
//
// The register route always answers with a redirect — it is hit directly via
// a link on the coach landing page, never called programmatically.
package enrollment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// Handler holds shared dependencies for the coach routes.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the coach routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/coach/", h.handleCoachAction)
}

// handleCoachAction dispatches GET /api/coach/{coachId}/{action}.
func (h *Handler) handleCoachAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse /api/coach/{coachId}/{action}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	coachID := parts[2]
	action := parts[3]

	switch action {
	case "register":
		h.register(w, r, coachID)
	case "status":
		h.status(w, r, coachID)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

// register runs the workflow and redirects in every case: the landing
// program on success, onboarding when the visitor has no display name, the
// coach-scoped error page on any failure. No JSON error body exists on this
// route.
func (h *Handler) register(w http.ResponseWriter, r *http.Request, coachID string) {
	userID := r.Header.Get("x-user-id")

	target, err := h.svc.Register(r.Context(), coachID, userID)
	if err != nil {
		log.Printf("[coach-service] register failed: coach=%s user=%s: %v", coachID, userID, err)
		http.Redirect(w, r, h.svc.ErrorURL(r.Context(), coachID), http.StatusFound)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// status answers the coach landing page's "does this visitor already have
// access" check. Unlike register it is a programmatic route, so errors are
// JSON.
func (h *Handler) status(w http.ResponseWriter, r *http.Request, coachID string) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	report, err := h.svc.Status(r.Context(), coachID, userID)
	if err != nil {
		if errors.Is(err, ErrCoachNotFound) {
			jsonError(w, "coach not found", http.StatusNotFound)
			return
		}
		log.Printf("[coach-service] status failed: coach=%s user=%s: %v", coachID, userID, err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	jsonOK(w, report)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

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
