package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func captureInstallation(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = InstallationID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestInstallationMiddleware_KeepsValidID(t *testing.T) {
	var got string
	handler := InstallationMiddleware(captureInstallation(&got))

	id := "3f1c2a9e-6a0b-4d57-9a51-0c8f2b7d1e44"
	req := httptest.NewRequest("GET", "/api/usage", http.NoBody)
	req.Header.Set(InstallationHeader, id)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got != id {
		t.Errorf("expected %s in context, got %q", id, got)
	}
	if rr.Header().Get(InstallationHeader) != id {
		t.Errorf("expected header echo, got %q", rr.Header().Get(InstallationHeader))
	}
}

func TestInstallationMiddleware_MintsWhenMissing(t *testing.T) {
	var got string
	handler := InstallationMiddleware(captureInstallation(&got))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/usage", http.NoBody))

	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected minted uuid, got %q", got)
	}
	if rr.Header().Get(InstallationHeader) != got {
		t.Errorf("minted id not echoed: %q vs %q", rr.Header().Get(InstallationHeader), got)
	}
}

func TestInstallationMiddleware_ReplacesMalformed(t *testing.T) {
	var got string
	handler := InstallationMiddleware(captureInstallation(&got))

	req := httptest.NewRequest("GET", "/api/usage", http.NoBody)
	req.Header.Set(InstallationHeader, "liquiditick:usage:*")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == "liquiditick:usage:*" {
		t.Fatal("malformed id must not reach the handler")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("expected minted uuid, got %q", got)
	}
}
