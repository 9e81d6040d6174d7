package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/pkg/config"
	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db"
	"github.com/tripdesk/backoffice/pkg/enums"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/lock"
	"github.com/tripdesk/backoffice/pkg/logger"
)

// Slot is one (partner, variant, service date) touched by a booking.
type Slot struct {
	PartnerID uuid.UUID
	VariantID uuid.UUID
	Date      time.Time
}

// Guard protects the span between the allotment check and the reservation
// insert. fn receives the transaction the check and the insert must share, or
// nil when the guard does not open one.
type Guard interface {
	Mode() enums.AllotmentGuard
	Run(ctx context.Context, slots []Slot, fn func(ctx context.Context, tx *gorm.DB) error) error
}

type serializableRunner interface {
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LockStore is the redis surface the lock guard needs.
type LockStore interface {
	lock.Store
	AllotmentLockKey(partnerID, variantID, date string) string
}

// NewGuard builds the guard selected by cfg.Guard.
func NewGuard(cfg config.AllotmentConfig, runner serializableRunner, locks LockStore, logg *logger.Logger) (Guard, error) {
	switch cfg.Guard {
	case enums.AllotmentGuardNone, "":
		return NoGuard{}, nil
	case enums.AllotmentGuardTransaction:
		if runner == nil {
			return nil, fmt.Errorf("transaction guard requires a tx runner")
		}
		return TransactionGuard{runner: runner}, nil
	case enums.AllotmentGuardLock:
		if locks == nil {
			return nil, fmt.Errorf("lock guard requires redis")
		}
		return LockGuard{store: locks, ttl: cfg.LockTTL, wait: cfg.LockWait, logg: logg}, nil
	}
	return nil, fmt.Errorf("unknown allotment guard %q", cfg.Guard)
}

// NoGuard runs the check and the insert as two independent steps. Concurrent
// bookings of the same night can both pass the check.
type NoGuard struct{}

func (NoGuard) Mode() enums.AllotmentGuard { return enums.AllotmentGuardNone }

func (NoGuard) Run(ctx context.Context, _ []Slot, fn func(ctx context.Context, tx *gorm.DB) error) error {
	return fn(ctx, nil)
}

// TransactionGuard runs the check and the insert in one SERIALIZABLE
// transaction. A conflicting writer surfaces as CodeContention.
type TransactionGuard struct {
	runner serializableRunner
}

func (TransactionGuard) Mode() enums.AllotmentGuard { return enums.AllotmentGuardTransaction }

func (g TransactionGuard) Run(ctx context.Context, _ []Slot, fn func(ctx context.Context, tx *gorm.DB) error) error {
	err := g.runner.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
	if err != nil && db.IsSerializationFailure(err) {
		return pkgerrors.Wrap(pkgerrors.CodeContention, err, "allotment changed by a concurrent booking")
	}
	return err
}

// LockGuard holds a redis lock per slot, taken in sorted key order, around
// the check and the insert.
type LockGuard struct {
	store LockStore
	ttl   time.Duration
	wait  time.Duration
	logg  *logger.Logger
}

func (LockGuard) Mode() enums.AllotmentGuard { return enums.AllotmentGuardLock }

func (g LockGuard) Run(ctx context.Context, slots []Slot, fn func(ctx context.Context, tx *gorm.DB) error) error {
	keys := make([]string, 0, len(slots))
	for _, s := range slots {
		keys = append(keys, g.store.AllotmentLockKey(s.PartnerID.String(), s.VariantID.String(), dates.Format(s.Date)))
	}

	locks, err := lock.NewMultiLock(g.store, keys, g.ttl, g.wait)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build allotment locks")
	}
	if err := locks.Acquire(ctx); err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return pkgerrors.Wrap(pkgerrors.CodeContention, err, "allotment is held by another booking")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire allotment locks")
	}
	defer func() {
		// unreleased keys expire after the lock ttl
		if err := locks.Release(context.WithoutCancel(ctx)); err != nil {
			g.logg.Error(g.logg.WithField(ctx, "lock_keys", locks.Keys()), "release allotment locks", err)
		}
	}()

	return fn(ctx, nil)
}
