package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ibrhamsworld/erp-api/internal/config"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterConfigFrom(t *testing.T) {
	rc := RateLimiterConfigFrom(&config.RateLimitConfig{Requests: 120, Duration: 60})
	assert.InDelta(t, 2.0, rc.RequestsPerSecond, 0.0001)
	assert.Equal(t, 120, rc.BurstSize)

	rc = RateLimiterConfigFrom(&config.RateLimitConfig{})
	assert.Equal(t, DefaultRateLimiterConfig(), rc)
}

func TestClientRateLimiter_PerIP(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Hour,
		EntryTTL:          time.Hour,
	})
	defer rl.Stop()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	w := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
	assert.Equal(t, 2, rl.ActiveClients())
}

func TestClientRateLimiter_CleanupAndStop(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		CleanupInterval:   time.Hour,
		EntryTTL:          time.Minute,
	})
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	rl.getLimiter("10.0.0.1")
	rl.now = func() time.Time { return base.Add(2 * time.Minute) }
	rl.getLimiter("10.0.0.2")

	rl.cleanup()
	assert.Equal(t, 1, rl.ActiveClients())

	rl.Stop()
	rl.Stop()
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	r := gin.New()
	r.Use(LoggerMiddleware(log), Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"status":500`)
}

func TestLoggerMiddleware_RequestID(t *testing.T) {
	var logs bytes.Buffer
	r := gin.New()
	r.Use(LoggerMiddleware(zerolog.New(&logs)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?q=1", nil))

	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, logs.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, logs.String(), `"path":"/?q=1"`)
}

func TestCORS_AllowsIdempotencyKey(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{
		AllowedOrigins: []string{"http://shop.local"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.POST("/api/v1/sales", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
	req.Header.Set("Origin", "http://shop.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://shop.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/v1/sales/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/sales/a", "/api/v1/sales/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/v1/sales/:id",status="200"} 2`)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (r *memoryIdempotencyRepo) GetByKey(_ context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ikey, ok := r.keys[key+"|"+endpoint]; ok {
		cp := *ikey
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryIdempotencyRepo) Reserve(_ context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ikey.Key + "|" + ikey.Endpoint
	if existing, ok := r.keys[id]; ok && !existing.IsExpired() {
		return false, nil
	}
	cp := *ikey
	r.keys[id] = &cp
	return true, nil
}

func (r *memoryIdempotencyRepo) Complete(_ context.Context, key, endpoint string, code int, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ikey, ok := r.keys[key+"|"+endpoint]; ok {
		ikey.ResponseCode = code
		ikey.ResponseBody = body
	}
	return nil
}

func (r *memoryIdempotencyRepo) Release(_ context.Context, key, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ikey, ok := r.keys[key+"|"+endpoint]; ok && ikey.IsPending() {
		delete(r.keys, key+"|"+endpoint)
	}
	return nil
}

func (r *memoryIdempotencyRepo) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func TestIdempotency(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0

	r := gin.New()
	r.POST("/sales", Idempotency(IdempotencyConfig{Repo: repo, Log: zerolog.Nop()}), func(c *gin.Context) {
		calls++
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusCreated, gin.H{"call": calls, "echo": string(body)})
	})

	post := func(key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString(body))
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := post("k1", `{"a":1}`)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.JSONEq(t, `{"call":1,"echo":"{\"a\":1}"}`, first.Body.String())

	replay := post("k1", `{"a":1}`)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls)

	conflict := post("k1", `{"a":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, conflict.Code)
	assert.Equal(t, 1, calls)

	post("", `{"a":1}`)
	post("", `{"a":1}`)
	assert.Equal(t, 3, calls)

	stored := repo.keys["k1|POST /sales"]
	require.NotNil(t, stored)
	assert.Equal(t, hashBody([]byte(`{"a":1}`)), stored.RequestHash)
}

func TestIdempotency_ExpiredKeyIsNotReplayed(t *testing.T) {
	repo := &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{
		"old|POST /sales": {
			Key:          "old",
			Endpoint:     "POST /sales",
			ResponseCode: http.StatusCreated,
			ResponseBody: `{"stale":true}`,
			ExpiresAt:    time.Now().Add(-time.Minute),
		},
	}}

	r := gin.New()
	r.POST("/sales", Idempotency(IdempotencyConfig{Repo: repo, Log: zerolog.Nop()}), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"fresh": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "old")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.JSONEq(t, `{"fresh":true}`, w.Body.String())
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
}

func TestIdempotency_FailedResponseReleasesKey(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	status := http.StatusBadRequest

	r := gin.New()
	r.POST("/sales", Idempotency(IdempotencyConfig{Repo: repo, Log: zerolog.Nop()}), func(c *gin.Context) {
		c.JSON(status, gin.H{"status": status})
	})

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "retry-me")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, post().Code)
	assert.Empty(t, repo.keys)

	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, post().Code)
	require.Contains(t, repo.keys, "retry-me|POST /sales")
	assert.False(t, repo.keys["retry-me|POST /sales"].IsPending())
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	repo := newMemoryIdempotencyRepo()

	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.POST("/sales", Idempotency(IdempotencyConfig{Repo: repo, Log: zerolog.Nop()}), func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "k")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, repo.keys)
}

func TestIdempotency_ConcurrentRetryRunsHandlerOnce(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	started := make(chan struct{})
	finish := make(chan struct{})
	var calls atomic.Int32

	r := gin.New()
	r.POST("/sales", Idempotency(IdempotencyConfig{Repo: repo, Log: zerolog.Nop()}), func(c *gin.Context) {
		calls.Add(1)
		close(started)
		<-finish
		c.JSON(http.StatusCreated, gin.H{"receipt_no": "IBR-2024-000001"})
	})

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString(`{"a":1}`))
		req.Header.Set(IdempotencyKeyHeader, "same")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- post() }()
	<-started

	inFlight := post()
	assert.Equal(t, http.StatusConflict, inFlight.Code)
	assert.Contains(t, inFlight.Body.String(), "still being processed")

	close(finish)
	assert.Equal(t, http.StatusCreated, (<-first).Code)

	replay := post()
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(IdempotencyReplayedHeader))
	assert.EqualValues(t, 1, calls.Load())
}
