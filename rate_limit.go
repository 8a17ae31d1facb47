package main

import (
	"log/slog"
	"net"
	"net/http"
	"sync"

	"go-aadhaar-verifier/metrics"

	"golang.org/x/time/rate"
)

const ERR_RATE_LIMITED = "rate limit exceeded"

type RateLimitConfig struct {
	Enabled           bool `json:"enabled" mapstructure:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// RateLimiter keeps a token bucket per client IP. The bucket refills at the
// configured rate and holds at most one minute worth of requests.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	metrics  *metrics.Metrics
	limiters map[string]*rate.Limiter
	mutex    sync.Mutex
}

func NewRateLimiter(requestsPerMinute int, m *metrics.Metrics) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(requestsPerMinute) / 60),
		burst:    requestsPerMinute,
		metrics:  m,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *RateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// Middleware rejects requests over the limit with 429. Health checks are
// never limited.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !l.limiterFor(ip).Allow() {
			l.metrics.IncrementRateLimited()
			slog.Debug("Request rate limited", "path", r.URL.Path)
			respondWithErr(w, http.StatusTooManyRequests, ERR_RATE_LIMITED, "client exceeded rate limit", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
