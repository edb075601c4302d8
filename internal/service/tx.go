package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Locker serializes work on a shared key across processes.
// Obtain returns ErrBusy when the key is held elsewhere.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// NoopLocker grants every key immediately. Used when no Redis is configured
// and in unit tests.
type NoopLocker struct{}

func (NoopLocker) Obtain(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

func quotationLockKey(id uint) string {
	return fmt.Sprintf("lock:quotation:%d", id)
}

// withLock runs fn while holding key. A nil locker runs fn unguarded.
func withLock(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func() error) error {
	if locker == nil {
		return fn()
	}
	release, err := locker.Obtain(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
