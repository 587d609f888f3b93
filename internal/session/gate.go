package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/leadgate/internal/config"
	"github.com/wolfman30/leadgate/internal/observability/metrics"
	"github.com/wolfman30/leadgate/pkg/logging"
)

const (
	// CookieName is the admin session cookie.
	CookieName = "admin_session"
	// DefaultMaxAge is the cookie lifetime.
	DefaultMaxAge = 7 * 24 * time.Hour

	tokenBytes = 32
)

// Options configure a Gate.
type Options struct {
	// Password is the shared admin secret. Empty makes Login fail with a ConfigError.
	Password string
	Verifier Verifier
	// Secure sets the cookie Secure flag; on in production.
	Secure bool
	MaxAge time.Duration
}

// Gate issues, checks and revokes the admin session cookie. It holds no
// per-session state of its own.
type Gate struct {
	password string
	verifier Verifier
	secure   bool
	maxAge   time.Duration
	random   io.Reader
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
}

// NewGate builds a gate. A nil Verifier falls back to PresenceVerifier.
func NewGate(opts Options, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Verifier == nil {
		opts.Verifier = PresenceVerifier{}
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	return &Gate{
		password: opts.Password,
		verifier: opts.Verifier,
		secure:   opts.Secure,
		maxAge:   opts.MaxAge,
		random:   rand.Reader,
		logger:   logger,
	}
}

// WithMetrics attaches session counters.
func (g *Gate) WithMetrics(m *metrics.LeadMetrics) *Gate {
	g.metrics = m
	return g
}

// Login checks password against the shared secret and returns the cookie to set.
func (g *Gate) Login(ctx context.Context, password string) (*http.Cookie, error) {
	if password == "" {
		g.metrics.ObserveSession("login", "bad_request")
		return nil, ErrPasswordRequired
	}
	if err := g.configured(); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		g.metrics.ObserveSession("login", "unauthorized")
		return nil, errInvalidPassword
	}

	token, err := g.newToken()
	if err != nil {
		g.metrics.ObserveSession("login", "error")
		return nil, err
	}
	value, err := g.verifier.Issue(ctx, token)
	if err != nil {
		g.metrics.ObserveSession("login", "error")
		return nil, err
	}
	g.metrics.ObserveSession("login", "ok")
	return g.cookie(value, int(g.maxAge/time.Second)), nil
}

// Reject fails a login whose credential can never equal the shared secret,
// such as a non-string JSON value. The configuration check still runs first.
func (g *Gate) Reject(context.Context) error {
	if err := g.configured(); err != nil {
		return err
	}
	g.metrics.ObserveSession("login", "unauthorized")
	return errInvalidPassword
}

func (g *Gate) configured() error {
	if g.password == "" {
		g.metrics.ObserveSession("login", "config_error")
		return &config.ConfigError{Reason: "ADMIN_PASSWORD environment variable is not set"}
	}
	return nil
}

// Check reports whether r carries an accepted session cookie. Internal
// failures are logged and reported as unauthenticated.
func (g *Gate) Check(ctx context.Context, r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		g.metrics.ObserveSession("check", "anonymous")
		return false
	}
	ok, err := g.verifier.Verify(ctx, c.Value)
	if err != nil {
		g.logger.Warn("session verification failed", "error", err)
		g.metrics.ObserveSession("check", "error")
		return false
	}
	if !ok {
		g.metrics.ObserveSession("check", "rejected")
		return false
	}
	g.metrics.ObserveSession("check", "authenticated")
	return true
}

// Logout revokes the presented session, if any, and returns an expiring
// cookie. It never fails.
func (g *Gate) Logout(ctx context.Context, r *http.Request) *http.Cookie {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if err := g.verifier.Revoke(ctx, c.Value); err != nil {
			g.logger.Warn("session revoke failed", "error", err)
		}
	}
	g.metrics.ObserveSession("logout", "ok")
	return g.cookie("", -1)
}

func (g *Gate) newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("session: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.Expires = time.Now().Add(time.Duration(maxAge) * time.Second).UTC()
	} else {
		c.Expires = time.Unix(0, 0).UTC()
	}
	return c
}
