package repository

import (
	"context"

	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves a stored response by key and endpoint
	GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error)
	// Reserve inserts ikey as pending. It returns false when the key is
	// already held for the endpoint; an expired holder is replaced.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete stores the response of a reserved key
	Complete(ctx context.Context, key, endpoint string, code int, body string) error
	// Release removes a key that is still pending so the request can be retried
	Release(ctx context.Context, key, endpoint string) error
	// DeleteExpired removes expired keys and reports how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
