package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthEndpointIsAlwaysPublic(t *testing.T) {
	r := SetupRoutes(&Dependencies{Env: "production"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDebugRuntimeRequiresAuthInProduction(t *testing.T) {
	r := SetupRoutes(&Dependencies{Env: "production", DebugUsername: "admin", DebugPassword: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/debug/runtime", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestDebugRuntimeAllowsCorrectCredentials(t *testing.T) {
	r := SetupRoutes(&Dependencies{Env: "production", DebugUsername: "admin", DebugPassword: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/debug/runtime", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDebugRuntimeOpenInDevelopment(t *testing.T) {
	r := SetupRoutes(&Dependencies{Env: "development"})

	req := httptest.NewRequest(http.MethodGet, "/debug/runtime", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAdminRoutesDisabledWhenDependenciesNil(t *testing.T) {
	r := SetupRoutes(&Dependencies{Env: "development"})

	req := httptest.NewRequest(http.MethodGet, "/admin/trades", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
