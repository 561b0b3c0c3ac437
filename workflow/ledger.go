package workflow

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/buddybudget/wealth_backend/config"
	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("wealth-ledger")

// Ledger runs every user-initiated write as one all-or-nothing unit:
// primary entity write, then balance effects, valuations, the daily snapshot
// upsert and the outbox event, committed or rolled back together.
type Ledger struct {
	DB              *gorm.DB
	Logger          *logrus.Logger
	Location        *time.Location
	DefaultCurrency string
	// Locker is optional; see obtainRedisLock.
	Locker *redislock.Client
	// Now is the clock used for timestamps and the snapshot day. Defaults to time.Now.
	Now func() time.Time
}

func NewLedger(db *gorm.DB, logger *logrus.Logger, loc *time.Location, defaultCurrency string) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{
		DB:              db,
		Logger:          logger,
		Location:        loc,
		DefaultCurrency: defaultCurrency,
	}
}

// LedgerEventPayload is the JSON body of outbox events.
type LedgerEventPayload struct {
	Account     *models.LiquidityAccount   `json:"account,omitempty"`
	Accounts    []*models.LiquidityAccount `json:"accounts,omitempty"`
	Transaction *models.Transaction        `json:"transaction,omitempty"`
	Snapshot    *models.WealthSnapshot     `json:"snapshot,omitempty"`
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func (l *Ledger) owner(o Owner) (Owner, error) {
	return o.normalize(l.DefaultCurrency)
}

// runUnit executes fn inside one database transaction holding the owner's write lock.
// Errors from fn are returned unmodified.
func (l *Ledger) runUnit(ctx context.Context, owner Owner, op string, fn func(tx *gorm.DB, now time.Time) error) error {
	ctx, span := tracer.Start(ctx, "ledger."+op, trace.WithAttributes(
		attribute.String("user_id", owner.UserId),
	))
	defer span.End()

	release := obtainRedisLock(ctx, l.Locker, l.Logger, owner.UserId, op)
	defer release()

	now := l.now()
	err := l.DB.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := AcquireOwnerWriteLock(conn, owner.UserId); err != nil {
			return utils.Persist("acquire write lock", err)
		}
		defer ReleaseOwnerWriteLock(conn, owner.UserId)

		return conn.Transaction(func(tx *gorm.DB) error {
			return fn(tx, now)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !utils.IsDomainError(err) {
			config.LogError(l.Logger, "workflow", op, "unit rolled back", owner.UserId, err)
		}
		return err
	}
	return nil
}

func (l *Ledger) enqueue(ctx context.Context, tx *gorm.DB, owner Owner, eventType models.LedgerEventType, referenceId string, now time.Time, payload LedgerEventPayload) error {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	if _, err := models.EnqueueLedgerEvent(tx, owner.UserId, eventType, referenceId, now, correlationId, payload); err != nil {
		return utils.Persist("enqueue ledger event", err)
	}
	return nil
}

func (l *Ledger) snapshot(tx *gorm.DB, owner Owner, now time.Time) (*models.WealthSnapshot, error) {
	return UpsertDailySnapshot(tx, owner.UserId, owner.Currency, now, l.Location)
}

// RecomputeSnapshot re-runs the snapshot upsert for today without any other write.
func (l *Ledger) RecomputeSnapshot(ctx context.Context, owner Owner) (*models.WealthSnapshot, error) {
	owner, err := l.owner(owner)
	if err != nil {
		return nil, err
	}
	var snapshot *models.WealthSnapshot
	err = l.runUnit(ctx, owner, "RecomputeSnapshot", func(tx *gorm.DB, now time.Time) error {
		var err error
		snapshot, err = l.snapshot(tx, owner, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
