package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"carrent/internal/auth"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

type ctxKey int

const claimsKey ctxKey = iota

// claimsFrom returns the authenticated claims stored by the auth middleware.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// authenticate requires a valid, non-revoked bearer token and stores its
// claims in the request context.
func (s *HTTPServer) authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token format")
			return
		}

		claims, err := s.tokens.Parse(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx), ps)
	}
}

// requireStaff allows only staff accounts through.
func (s *HTTPServer) requireStaff(next httprouter.Handle) httprouter.Handle {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims := claimsFrom(r.Context()); claims == nil || !claims.IsStaff {
			writeError(w, http.StatusForbidden, "staff access required")
			return
		}
		next(w, r, ps)
	})
}

// limiterIdleTTL is how long a client's bucket survives without traffic
// before the sweep drops it.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out a token-bucket limiter per client address. Idle
// entries are swept so the map stays bounded under address scans.
type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

func newIPLimiter(rps, burst int) *ipLimiter {
	if rps <= 0 {
		rps = 20
	}
	if burst <= 0 {
		burst = 40
	}
	return &ipLimiter{
		limiters:  make(map[string]*limiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (l *ipLimiter) get(addr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for h, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.limiters, h)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[host]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[host] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.get(r.RemoteAddr).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
