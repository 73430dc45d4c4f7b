// Package auth enforces shared-secret authentication on incoming requests.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// Config holds the shared secret presented by the exporter app and the
// calendar subscription URL.
type Config struct {
	Secret string
}

// Middleware rejects requests that do not present the shared secret. The
// secret is accepted via the X-Api-Key header or, because calendar clients
// can only influence the URL, the key query parameter.
type Middleware struct {
	cfg     Config
	skipper func(*http.Request) bool
}

// NewMiddleware constructs Middleware; /healthz stays open for probes.
func NewMiddleware(cfg Config) Middleware {
	skipper := func(r *http.Request) bool {
		return r.URL.Path == "/healthz"
	}
	return Middleware{cfg: cfg, skipper: skipper}
}

// Wrap attaches secret checking to an http.Handler.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipper(r) {
			next.ServeHTTP(w, r)
			return
		}
		presented := r.Header.Get("X-Api-Key")
		if presented == "" {
			presented = r.URL.Query().Get("key")
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(m.cfg.Secret)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"type":   "unauthorized",
				"detail": "missing or invalid api key",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
