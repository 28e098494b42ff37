package httpapi

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/simaogato/investfolio-backend/internal/adapter/auth"
)

// authMiddleware resolves the bearer token to a user id or answers 401
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.verifier.VerifyHeader(r.Header.Get("Authorization"))
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, kindUnauthenticated, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

// rateLimitMiddleware applies the per-user token bucket; must run after authMiddleware
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			userID, _ := auth.UserIDFromContext(r.Context())
			if !s.limiter.allow(userID) {
				w.Header().Set("Retry-After", "1")
				s.writeError(w, http.StatusTooManyRequests, kindRateLimited, "too many requests")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// maxTrackedUsers bounds the limiter map; it is reset when exceeded
const maxTrackedUsers = 10000

type userLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[uuid.UUID]*rate.Limiter
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	if burst < 1 {
		burst = 1
	}
	return &userLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[uuid.UUID]*rate.Limiter),
	}
}

func (l *userLimiter) allow(userID uuid.UUID) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[userID]
	if !ok {
		if len(l.limiters) >= maxTrackedUsers {
			l.limiters = make(map[uuid.UUID]*rate.Limiter)
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
