package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"pedegas/internal/pkg/cache"
)

// RateLimiter limita requisições por IP usando um contador no Redis.
// O incremento é atômico e já carrega o TTL: a chave nasce com expiração
// mesmo quando expira e é recriada entre duas requisições.
func RateLimiter(client cache.Client, limit int, duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			key := "rate-limit:" + ip
			ctx := context.Background()

			count, err := client.Incr(ctx, key, duration)
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if count > limit {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count))
			next.ServeHTTP(w, r)
		})
	}
}
