package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/buddybudget/wealth_backend/config"
	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUser = "user-1"

var testOwner = Owner{UserId: testUser, Currency: "EUR"}

// tickingClock advances one second on every read so consecutive units get distinct timestamps.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock(start time.Time) *tickingClock {
	return &tickingClock{now: start}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *tickingClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestLedger(t *testing.T) (*Ledger, *tickingClock) {
	t.Helper()
	clock := newTickingClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	ledger := NewLedger(newTestDB(t), nil, time.UTC, "EUR")
	ledger.Now = clock.Now
	return ledger, clock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func mustCreateAccount(t *testing.T, l *Ledger, name string, balance string) *models.LiquidityAccount {
	t.Helper()
	result, err := l.CreateAccount(context.Background(), testOwner, &NewLiquidityAccount{
		Name:     name,
		Type:     models.AccountTypeChecking,
		Balance:  dec(balance),
		Currency: "EUR",
	})
	require.NoError(t, err)
	return result.Account
}

func reloadAccount(t *testing.T, l *Ledger, id string) *models.LiquidityAccount {
	t.Helper()
	var account models.LiquidityAccount
	require.NoError(t, l.DB.Where("id = ?", id).Take(&account).Error)
	return &account
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// failCreatesOn makes every INSERT into table fail until the test ends.
func failCreatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "test:fail_" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("injected failure on " + table))
		}
	}))
	t.Cleanup(func() {
		_ = db.Callback().Create().Remove(name)
	})
}

func TestRunUnit_RollsBackAndReturnsErrorUnmodified(t *testing.T) {
	l, _ := newTestLedger(t)

	err := l.runUnit(context.Background(), testOwner, "test", func(tx *gorm.DB, now time.Time) error {
		require.NoError(t, tx.Create(&models.LiquidityAccount{
			UserId: testUser, Name: "tmp", Type: models.AccountTypeCash, Currency: "EUR",
		}).Error)
		return utils.ErrInvalidTransfer
	})
	require.ErrorIs(t, err, utils.ErrInvalidTransfer)
	require.Equal(t, utils.ErrInvalidTransfer, err)
	require.Zero(t, countRows(t, l.DB, &models.LiquidityAccount{}, ""))
}

func TestRecomputeSnapshot_IsIdempotent(t *testing.T) {
	l, _ := newTestLedger(t)
	mustCreateAccount(t, l, "Checking", "100")

	first, err := l.RecomputeSnapshot(context.Background(), testOwner)
	require.NoError(t, err)
	second, err := l.RecomputeSnapshot(context.Background(), testOwner)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	requireDecimal(t, "100", second.LiquidityTotal)
	requireDecimal(t, "100", second.NetWorth)
	require.Equal(t, int64(1), countRows(t, l.DB, &models.WealthSnapshot{}, "user_id = ?", testUser))
}

func TestOwner_RequiresUserId(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.CreateAccount(context.Background(), Owner{}, &NewLiquidityAccount{
		Name: "Checking", Type: models.AccountTypeChecking, Balance: dec("1"),
	})
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "userId")
}
