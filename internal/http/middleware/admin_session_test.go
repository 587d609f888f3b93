package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubChecker bool

func (s stubChecker) Check(context.Context, *http.Request) bool { return bool(s) }

func TestRequireAdminSessionRejects(t *testing.T) {
	called := false
	mw := RequireAdminSession(stubChecker(false))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads-listing", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Fatalf("handler must not run without a session")
	}
	if !strings.Contains(rec.Body.String(), `"error":"Unauthorized"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRequireAdminSessionNilChecker(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAdminSession(nil)(http.NotFoundHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads-listing", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAdminSessionAllows(t *testing.T) {
	called := false
	rec := httptest.NewRecorder()
	RequireAdminSession(stubChecker(true))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads-listing", nil))

	if !called {
		t.Fatalf("expected handler to be called")
	}
}
