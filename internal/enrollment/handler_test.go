package enrollment_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"jobmate/coach-service/internal/enrollment"
)

func newTestMux(f *fakeStore, mode enrollment.Mode) *http.ServeMux {
	svc := enrollment.NewService(f, modeStub{mode}, nil, nil)
	mux := http.NewServeMux()
	enrollment.NewHandler(svc).RegisterRoutes(mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// ── Register route ─────────────────────────────────────────────────────────

func TestHandler_RegisterRedirectsToOnboarding(t *testing.T) {
	f := newFakeStore()
	seedCoach(f)
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/c1/register", "u1")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/coaches/onboarding?redirect=") {
		t.Fatalf("Location = %q, want onboarding redirect", loc)
	}
	embedded, err := url.QueryUnescape(strings.TrimPrefix(loc, "/coaches/onboarding?redirect="))
	if err != nil {
		t.Fatalf("redirect param unescape: %v", err)
	}
	if !strings.HasPrefix(embedded, "/acme/programs/") {
		t.Errorf("embedded return URL = %q, want /acme/programs/…", embedded)
	}
}

func TestHandler_RegisterRedirectsToProgram(t *testing.T) {
	f := newFakeStore()
	seedCoach(f)
	f.profiles["u1"] = "Jane"
	mux := newTestMux(f, enrollment.ModeDirectEnrollment)

	rec := doRequest(mux, http.MethodGet, "/api/coach/c1/register", "u1")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/acme/programs/p1" {
		t.Errorf("Location = %q, want /acme/programs/p1", loc)
	}
}

// No session: still a redirect, never a JSON error, and nothing is written.
func TestHandler_RegisterUnauthenticatedRedirectsToErrorPage(t *testing.T) {
	f := newFakeStore()
	seedCoach(f)
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/c1/register", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/acme/register-error?coachId=c1" {
		t.Errorf("Location = %q, want coach error page", loc)
	}
	if len(f.access) != 0 {
		t.Error("unauthenticated register wrote an access grant")
	}
}

func TestHandler_RegisterUnknownCoachRedirectsToFallbackErrorPage(t *testing.T) {
	f := newFakeStore()
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/ghost/register", "u1")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/register-error?coachId=ghost" {
		t.Errorf("Location = %q, want unscoped error page", loc)
	}
}

// ── Status route ───────────────────────────────────────────────────────────

func TestHandler_StatusRequiresUser(t *testing.T) {
	f := newFakeStore()
	seedCoach(f)
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/c1/status", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandler_StatusUnknownCoach(t *testing.T) {
	f := newFakeStore()
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/ghost/status", "u1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_StatusOK(t *testing.T) {
	f := newFakeStore()
	seedCoach(f)
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/c1/status", "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"hasAccess":false`) {
		t.Errorf("body = %s, want hasAccess false", body)
	}
}

// ── Dispatch ───────────────────────────────────────────────────────────────

func TestHandler_MethodNotAllowed(t *testing.T) {
	f := newFakeStore()
	seedCoach(f)
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodPost, "/api/coach/c1/register", "u1")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandler_UnknownAction(t *testing.T) {
	f := newFakeStore()
	seedCoach(f)
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/c1/unsubscribe", "u1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_InvalidPath(t *testing.T) {
	f := newFakeStore()
	mux := newTestMux(f, enrollment.ModeLegacyDuplication)

	rec := doRequest(mux, http.MethodGet, "/api/coach/c1", "u1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
