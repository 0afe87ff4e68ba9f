package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/response"
	"github.com/rs/zerolog"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from a stored key
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour

	maxIdempotencyKeyLen = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	Log  zerolog.Logger
	TTL  time.Duration // defaults to IdempotencyKeyTTL
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Idempotency replays the stored response when a request is retried with
// the same Idempotency-Key, so a flaky connection cannot record a sale
// twice. Requests without the header pass through. The key is reserved
// before the handler runs: a retry that arrives while the first request
// is still running gets 409. Only 2xx responses are stored; any other
// outcome releases the key. Reusing a key with a different body is
// rejected with 422.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = IdempotencyKeyTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			response.AbortWithError(c, http.StatusBadRequest, "Idempotency-Key must be at most 255 characters")
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.AbortWithError(c, http.StatusBadRequest, "Could not read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		requestHash := hashBody(body)
		endpoint := c.Request.Method + " " + c.FullPath()

		ctx := c.Request.Context()
		reserved, err := cfg.Repo.Reserve(ctx, &entity.IdempotencyKey{
			Key:         key,
			Endpoint:    endpoint,
			RequestHash: requestHash,
			ExpiresAt:   time.Now().UTC().Add(ttl),
		})
		if err != nil {
			cfg.Log.Error().Err(err).Str("idempotency_key", key).Msg("idempotency reservation failed")
			response.AbortWithError(c, http.StatusInternalServerError, "Failed to check idempotency key")
			return
		}
		if !reserved {
			replayOrReject(c, cfg, key, endpoint, requestHash)
			return
		}

		// Outlives client cancellation so the key is never left pending.
		storeCtx := context.WithoutCancel(ctx)
		stored := false
		defer func() {
			if stored {
				return
			}
			if err := cfg.Repo.Release(storeCtx, key, endpoint); err != nil {
				cfg.Log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
		}()

		// Capture the response
		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		if err := cfg.Repo.Complete(storeCtx, key, endpoint, status, blw.body.String()); err != nil {
			cfg.Log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency response")
			return
		}
		stored = true
	}
}

// replayOrReject answers a request whose key is already held.
func replayOrReject(c *gin.Context, cfg IdempotencyConfig, key, endpoint, requestHash string) {
	existing, err := cfg.Repo.GetByKey(c.Request.Context(), key, endpoint)
	if err != nil {
		cfg.Log.Error().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		response.AbortWithError(c, http.StatusInternalServerError, "Failed to check idempotency key")
		return
	}

	switch {
	case existing == nil || existing.IsExpired():
		// Released or expired between the reservation and the lookup.
		response.AbortWithError(c, http.StatusConflict, "Idempotency-Key is busy, please retry")
	case existing.RequestHash != "" && existing.RequestHash != requestHash:
		response.AbortWithError(c, http.StatusUnprocessableEntity,
			"Idempotency-Key has already been used with a different request")
	case existing.IsPending():
		response.AbortWithError(c, http.StatusConflict,
			"A request with this Idempotency-Key is still being processed")
	default:
		c.Header(IdempotencyReplayedHeader, "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
		c.Abort()
	}
}
