package workflow

import (
	"context"
	"testing"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyBalances_ConsistentAfterMixedOperations(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	x := mustCreateAccount(t, l, "X", "100")
	y := mustCreateAccount(t, l, "Y", "20")

	early, err := l.CreateTransaction(ctx, testOwner, &NewTransaction{
		Type: models.TransactionTypeExpense, Amount: dec("15"), AccountId: x.ID,
	}, "")
	require.NoError(t, err)

	// Adjustment re-anchors X at 80.
	_, err = l.UpdateAccount(ctx, testOwner, x.ID, &UpdateLiquidityAccount{Balance: decPtr("80")})
	require.NoError(t, err)

	_, err = l.CreateTransaction(ctx, testOwner, &NewTransaction{
		Type: models.TransactionTypeTransfer, Amount: dec("30"), AccountId: x.ID, DestinationAccountId: strPtr(y.ID),
	}, "")
	require.NoError(t, err)
	_, err = l.CreateTransaction(ctx, testOwner, &NewTransaction{
		Type: models.TransactionTypeIncome, Amount: dec("2.5"), AccountId: y.ID,
	}, "")
	require.NoError(t, err)

	// Created before the anchor, deleted after it.
	_, err = l.DeleteTransaction(ctx, testOwner, early.Transaction.ID)
	require.NoError(t, err)

	checks, err := l.VerifyBalances(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	for _, c := range checks {
		assert.True(t, c.Consistent(), "%s drift %s", c.Name, c.Drift)
	}
	requireDecimal(t, "65", reloadAccount(t, l, x.ID).Balance)
	requireDecimal(t, "52.5", reloadAccount(t, l, y.ID).Balance)
}

func TestVerifyBalances_DetectsDrift(t *testing.T) {
	l, _ := newTestLedger(t)
	x := mustCreateAccount(t, l, "X", "100")
	_, err := l.CreateTransaction(context.Background(), testOwner, &NewTransaction{
		Type: models.TransactionTypeExpense, Amount: dec("10"), AccountId: x.ID,
	}, "")
	require.NoError(t, err)

	require.NoError(t, l.DB.Model(&models.LiquidityAccount{}).Where("id = ?", x.ID).Update("balance", dec("95")).Error)

	checks, err := l.VerifyBalances(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].Consistent())
	requireDecimal(t, "90", checks[0].Expected)
	requireDecimal(t, "5", checks[0].Drift)
}

func TestVerifyAccountBalance_RequiresAnchor(t *testing.T) {
	l, _ := newTestLedger(t)
	account := models.LiquidityAccount{UserId: testUser, Name: "Raw", Type: models.AccountTypeCash, Currency: "EUR", Balance: dec("5")}
	require.NoError(t, l.DB.Create(&account).Error)

	_, err := VerifyAccountBalance(l.DB, testUser, account.ID)
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = VerifyAccountBalance(l.DB, testUser, "missing")
	require.ErrorIs(t, err, utils.ErrAccountNotFound)
}
