package workflow

import (
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ValuationInput struct {
	AssetId  string
	Value    decimal.Decimal
	Currency string
	Reason   models.ValuationReason
	// At defaults to now.
	At time.Time
}

// RecordValuation appends one liquidity valuation. It never touches existing rows.
func RecordValuation(tx *gorm.DB, userId string, input ValuationInput) (*models.AssetValuation, error) {
	at := input.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	valuation := models.AssetValuation{
		UserId:    userId,
		AssetId:   input.AssetId,
		AssetType: models.AssetTypeLiquidity,
		Date:      at,
		Value:     input.Value,
		Currency:  input.Currency,
		Reason:    input.Reason,
		CreatedAt: at,
	}
	if err := tx.Create(&valuation).Error; err != nil {
		return nil, utils.Persist("record valuation", err)
	}
	return &valuation, nil
}
