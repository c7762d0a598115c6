package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pedegas/internal/pkg/middleware"
)

// fakeCache é um cache.Client em memória que registra o TTL recebido a cada
// criação de chave pelo Incr.
type fakeCache struct {
	counts map[string]int
	ttls   map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: map[string]int{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (f *fakeCache) Incr(ctx context.Context, key string, expiration time.Duration) (int, error) {
	f.counts[key]++
	if f.counts[key] == 1 {
		f.ttls[key] = expiration
	}
	return f.counts[key], nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.counts, key)
	delete(f.ttls, key)
	return nil
}

// expire simula o Redis descartando a chave ao fim do período.
func (f *fakeCache) expire(key string) {
	delete(f.counts, key)
	delete(f.ttls, key)
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksAboveLimit(t *testing.T) {
	fake := newFakeCache()
	handler := middleware.RateLimiter(fake, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := doRequest(handler, "10.0.0.1:4000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := doRequest(handler, "10.0.0.1:4000")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := doRequest(handler, "10.0.0.1:4000")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
}

func TestRateLimiter_CountsPerIP(t *testing.T) {
	fake := newFakeCache()
	handler := middleware.RateLimiter(fake, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1:4000").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1:4001").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.2:4000").Code)
}

// O contador sempre nasce com TTL, inclusive quando a chave expirou e a
// requisição seguinte a recria: sem isso um IP ficaria bloqueado para sempre
// assim que passasse do limite.
func TestRateLimiter_RecreatedCounterKeepsTTL(t *testing.T) {
	fake := newFakeCache()
	handler := middleware.RateLimiter(fake, 5, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest(handler, "10.0.0.1:4000")
	assert.Equal(t, time.Minute, fake.ttls["rate-limit:10.0.0.1"])

	fake.expire("rate-limit:10.0.0.1")

	resp := doRequest(handler, "10.0.0.1:4000")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, time.Minute, fake.ttls["rate-limit:10.0.0.1"])
	assert.Equal(t, 1, fake.counts["rate-limit:10.0.0.1"])
}
