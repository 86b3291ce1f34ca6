package service

import (
	"context"
	"errors"
	"time"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/worker"

	"gorm.io/gorm"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized results for a limited time. Failures are never fatal
// to the caller.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Notifier queues outbound email for the worker pool.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

// notFound maps a missing record to a NotFound error with msg and passes any
// other error through unchanged.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(msg)
	}
	return err
}

// conflictOnDuplicate maps a unique-key violation to a Conflict error with msg.
func conflictOnDuplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.Conflict(msg)
	}
	return err
}
