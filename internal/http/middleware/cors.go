package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders = "Content-Type, X-Request-ID"
	corsAllowMethods = "GET, POST, DELETE, OPTIONS"
	corsMaxAge       = "600"
)

// corsPolicy decides which origins may call the API and whether the
// admin_session cookie may ride along.
type corsPolicy struct {
	trusted  map[string]struct{}
	wildcard bool
}

func newCORSPolicy(origins []string) corsPolicy {
	p := corsPolicy{trusted: map[string]struct{}{}}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			p.wildcard = true
		default:
			p.trusted[origin] = struct{}{}
		}
	}
	return p
}

// resolve returns the Access-Control-Allow-Origin value for origin and
// whether credentials are allowed. Only listed origins get credentials; the
// wildcard grants anonymous access only.
func (p corsPolicy) resolve(origin string) (allowOrigin string, credentials bool) {
	if origin == "" {
		return "", false
	}
	if _, ok := p.trusted[origin]; ok {
		return origin, true
	}
	if p.wildcard {
		return "*", false
	}
	return "", false
}

// CORS lets a separately hosted popup and dashboard call the API. Origins in
// allowedOrigins receive credentialed responses so the admin session cookie
// works cross-origin. "*" opens anonymous access (lead intake) for every other
// origin without ever exposing the cookie.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			allowOrigin, credentials := policy.resolve(origin)

			h := w.Header()
			h.Add("Vary", "Origin")
			if allowOrigin != "" {
				h.Set("Access-Control-Allow-Origin", allowOrigin)
				if credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			if allowOrigin == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
