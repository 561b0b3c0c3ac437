package models

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCash     AccountType = "cash"
	AccountTypeOther    AccountType = "other"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash, AccountTypeOther:
		return true
	}
	return false
}

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

type AssetType string

const (
	AssetTypeLiquidity AssetType = "liquidity"
)

// ValuationReason records which write produced a valuation row.
// Opening and adjustment rows anchor balance replay.
type ValuationReason string

const (
	ValuationReasonOpening     ValuationReason = "opening"
	ValuationReasonAdjustment  ValuationReason = "adjustment"
	ValuationReasonTransaction ValuationReason = "transaction"
	ValuationReasonReversal    ValuationReason = "reversal"
)
