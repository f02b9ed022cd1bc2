package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func passThrough() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestDebugAuthUnsetCredentialsDenyOutsideDevelopment(t *testing.T) {
	h := DebugAuth("", "", "production")(passThrough())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestDebugAuthWrongPasswordRejected(t *testing.T) {
	h := DebugAuth("admin", "secret", "production")(passThrough())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
