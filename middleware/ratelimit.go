package middleware

import (
	"net/http"
	"sync"
	"time"

	"feedadmin/logger"
	"feedadmin/models"

	"golang.org/x/time/rate"
)

// IPRateLimiter 클라이언트 IP 별 토큰 버킷
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter rps/burst 로 IP 별 제한기 생성
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*ipLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Allow 해당 IP 의 요청을 허용할지 결정한다
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now

	// 오래 쓰이지 않은 항목 정리
	if len(l.limiters) > 1024 {
		for key, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.idleTTL {
				delete(l.limiters, key)
			}
		}
	}
	return entry.limiter.AllowN(now, 1)
}

// Handler 제한 초과 시 429 를 돌려주는 미들웨어
func (l *IPRateLimiter) Handler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := GetClientIP(r)
		if !l.Allow(ip) {
			logger.WithFields(map[string]interface{}{
				"request_id": r.Context().Value(models.CtxRequestID),
				"ip":         ip,
				"path":       r.URL.Path,
			}).Warn("Rate limit exceeded")
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	}
}
