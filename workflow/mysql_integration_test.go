package workflow

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestMySQL_ConcurrentWritesSerializePerOwner(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 and MYSQL_TEST_DSN to run integration tests")
	}
	dsn := strings.TrimSpace(os.Getenv("MYSQL_TEST_DSN"))
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))

	owner := Owner{UserId: "it-" + uuid.NewString(), Currency: "EUR"}
	l := NewLedger(db, nil, time.UTC, "EUR")
	ctx := context.Background()

	created, err := l.CreateAccount(ctx, owner, &NewLiquidityAccount{
		Name: "Checking", Type: models.AccountTypeChecking, Balance: dec("100"),
	})
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.CreateTransaction(ctx, owner, &NewTransaction{
				Type: models.TransactionTypeExpense, Amount: dec("1"), AccountId: created.Account.ID,
			}, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	account, err := l.GetAccount(ctx, owner.UserId, created.Account.ID)
	require.NoError(t, err)
	requireDecimal(t, "80", account.Balance)

	snapshots, err := l.ListSnapshots(ctx, owner.UserId, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	requireDecimal(t, "80", snapshots[0].LiquidityTotal)

	checks, err := l.VerifyBalances(ctx, owner.UserId)
	require.NoError(t, err)
	for _, c := range checks {
		assert.True(t, c.Consistent())
	}
}
