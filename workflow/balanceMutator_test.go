package workflow

import (
	"testing"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionEffects(t *testing.T) {
	dest := "acc-y"
	same := "acc-x"

	cases := []struct {
		name    string
		tx      models.Transaction
		want    map[string]string
		wantErr error
	}{
		{
			name: "income credits source",
			tx:   models.Transaction{Type: models.TransactionTypeIncome, Amount: dec("12.5"), AccountId: "acc-x"},
			want: map[string]string{"acc-x": "12.5"},
		},
		{
			name: "expense debits source",
			tx:   models.Transaction{Type: models.TransactionTypeExpense, Amount: dec("12.5"), AccountId: "acc-x"},
			want: map[string]string{"acc-x": "-12.5"},
		},
		{
			name: "internal transfer moves amount",
			tx:   models.Transaction{Type: models.TransactionTypeTransfer, Amount: dec("30"), AccountId: "acc-x", DestinationAccountId: &dest},
			want: map[string]string{"acc-x": "-30", "acc-y": "30"},
		},
		{
			name: "external transfer ignores destination",
			tx:   models.Transaction{Type: models.TransactionTypeTransfer, Amount: dec("30"), AccountId: "acc-x", DestinationAccountId: &dest, IsExternalAccount: true},
			want: map[string]string{"acc-x": "-30"},
		},
		{
			name:    "transfer to itself",
			tx:      models.Transaction{Type: models.TransactionTypeTransfer, Amount: dec("30"), AccountId: "acc-x", DestinationAccountId: &same},
			wantErr: utils.ErrInvalidTransfer,
		},
		{
			name:    "transfer without destination",
			tx:      models.Transaction{Type: models.TransactionTypeTransfer, Amount: dec("30"), AccountId: "acc-x"},
			wantErr: utils.ErrInvalidTransfer,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			effects, err := TransactionEffects(tc.tx)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, effects, len(tc.want))
			for _, e := range effects {
				want, ok := tc.want[e.AccountId]
				require.True(t, ok, "unexpected account %s", e.AccountId)
				requireDecimal(t, want, e.Delta)
			}
		})
	}
}

func TestTransactionEffects_RejectsBadInput(t *testing.T) {
	var ve *utils.ValidationError

	_, err := TransactionEffects(models.Transaction{Type: models.TransactionTypeIncome, Amount: dec("0"), AccountId: "a"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "amount")

	_, err = TransactionEffects(models.Transaction{Type: "refund", Amount: dec("1"), AccountId: "a"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "type")
}
