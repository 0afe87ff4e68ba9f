package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	domainRepo "github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := conn(ctx, r.db).
		Where("key = ? AND endpoint = ?", key, endpoint).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

// Reserve relies on the unique (key, endpoint) index: of two concurrent
// reservations only one insert succeeds.
func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	db := conn(ctx, r.db)
	err := db.Where("key = ? AND endpoint = ? AND expires_at < ?", ikey.Key, ikey.Endpoint, time.Now().UTC()).
		Delete(&entity.IdempotencyKey{}).Error
	if err != nil {
		return false, err
	}

	ikey.ResponseCode = 0
	ikey.ResponseBody = ""
	if err := db.Create(ikey).Error; err != nil {
		if IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key, endpoint string, code int, body string) error {
	return conn(ctx, r.db).Model(&entity.IdempotencyKey{}).
		Where("key = ? AND endpoint = ?", key, endpoint).
		Updates(map[string]any{"response_code": code, "response_body": body}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, key, endpoint string) error {
	return conn(ctx, r.db).
		Where("key = ? AND endpoint = ? AND response_code = 0", key, endpoint).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
