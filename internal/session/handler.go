package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/wolfman30/leadgate/internal/config"
	"github.com/wolfman30/leadgate/pkg/logging"
)

var sessionTracer = otel.Tracer("leadgate.internal.session")

// Handler exposes the gate over /admin-session.
type Handler struct {
	gate   *Gate
	logger *logging.Logger
}

// NewHandler creates a new session handler
func NewHandler(gate *Gate, logger *logging.Logger) *Handler {
	if gate == nil {
		panic("session: gate cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{gate: gate, logger: logger}
}

type loginRequest struct {
	Password any `json:"password"`
}

// credential classifies the submitted password. Missing, null, false, 0 and
// "" count as absent; any other non-string value is present but can never match.
func (req loginRequest) credential() (password string, present bool) {
	switch v := req.Password.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return "", v
	case float64:
		return "", v != 0
	default:
		return "", true
	}
}

// Login handles POST /admin-session
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := sessionTracer.Start(r.Context(), "session.login")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	var (
		cookie *http.Cookie
		err    error
	)
	switch password, present := req.credential(); {
	case !present:
		cookie, err = h.gate.Login(ctx, "")
	case password == "":
		err = h.gate.Reject(ctx)
	default:
		cookie, err = h.gate.Login(ctx, password)
	}
	if err != nil {
		var authErr *AuthError
		switch {
		case errors.Is(err, ErrPasswordRequired):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Password is required"})
		case errors.As(err, &authErr):
			h.logger.Warn("admin login rejected", "remote_ip", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": authErr.Message})
		case config.IsConfigError(err):
			h.logger.Error("admin login misconfigured", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Authentication failed: server configuration error"})
		default:
			span.RecordError(err)
			h.logger.Error("admin login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Authentication failed"})
		}
		return
	}

	http.SetCookie(w, cookie)
	h.logger.Info("admin session issued", "remote_ip", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Authenticated"})
}

// Status handles GET /admin-session. It always answers 200.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": h.gate.Check(r.Context(), r)})
}

// Logout handles DELETE /admin-session. It always answers 200.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.gate.Logout(r.Context(), r))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
