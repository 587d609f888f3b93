package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/leadgate/pkg/logging"
)

func newTestHandler(password string) *Handler {
	return NewHandler(NewGate(Options{Password: password}, logging.New("error")), logging.New("error"))
}

func doLogin(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin-session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		body       string
		wantStatus int
		wantCookie bool
		wantError  string
	}{
		{"success", "pw", `{"password":"pw"}`, http.StatusOK, true, ""},
		{"missing password", "pw", `{}`, http.StatusBadRequest, false, "Password is required"},
		{"malformed body", "pw", `{`, http.StatusBadRequest, false, "Invalid request body"},
		{"wrong password", "pw", `{"password":"nope"}`, http.StatusUnauthorized, false, "Invalid password"},
		{"server misconfigured", "", `{"password":"pw"}`, http.StatusInternalServerError, false, "Authentication failed: server configuration error"},
		{"numeric password", "123", `{"password":123}`, http.StatusUnauthorized, false, "Invalid password"},
		{"boolean true password", "pw", `{"password":true}`, http.StatusUnauthorized, false, "Invalid password"},
		{"object password", "pw", `{"password":{}}`, http.StatusUnauthorized, false, "Invalid password"},
		{"zero password", "pw", `{"password":0}`, http.StatusBadRequest, false, "Password is required"},
		{"false password", "pw", `{"password":false}`, http.StatusBadRequest, false, "Password is required"},
		{"null password", "pw", `{"password":null}`, http.StatusBadRequest, false, "Password is required"},
		{"non-string password misconfigured", "", `{"password":123}`, http.StatusInternalServerError, false, "Authentication failed: server configuration error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doLogin(newTestHandler(tt.password), tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := sessionCookie(rec) != nil; got != tt.wantCookie {
				t.Fatalf("expected cookie=%v, got %v", tt.wantCookie, got)
			}
			if tt.wantError != "" {
				var body map[string]any
				_ = json.NewDecoder(rec.Body).Decode(&body)
				if body["error"] != tt.wantError {
					t.Fatalf("expected error %q, got %v", tt.wantError, body["error"])
				}
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	h := newTestHandler("pw")

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/admin-session", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"authenticated":false}` {
		t.Fatalf("unexpected anonymous status %d %s", rec.Code, rec.Body.String())
	}

	login := doLogin(h, `{"password":"pw"}`)
	req := httptest.NewRequest(http.MethodGet, "/admin-session", nil)
	req.AddCookie(sessionCookie(login))
	rec = httptest.NewRecorder()
	h.Status(rec, req)
	if strings.TrimSpace(rec.Body.String()) != `{"authenticated":true}` {
		t.Fatalf("unexpected status body %s", rec.Body.String())
	}
}

func TestLogoutHandlerTwice(t *testing.T) {
	h := newTestHandler("pw")
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Logout(rec, httptest.NewRequest(http.MethodDelete, "/admin-session", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("logout %d: expected 200, got %d", i, rec.Code)
		}
		c := sessionCookie(rec)
		if c == nil || c.MaxAge >= 0 || c.Value != "" {
			t.Fatalf("logout %d: expected cleared cookie, got %#v", i, c)
		}
	}
}
