package workflow

import (
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const netWorthExpr = "liquidity_total + market_investments_total + crypto_investments_total + " +
	"retirement_investments_total + real_estate_investments_total - liabilities_total"

// UpsertDailySnapshot writes the owner's snapshot for the calendar day of now in loc.
//
// liquidity_total is always recomputed from the live account balances, and
// net_worth is recomputed from the row's stored totals, so calling it again with
// an unchanged ledger leaves the row as it was. The (user_id, date) unique index
// turns the write into a single insert-or-update.
func UpsertDailySnapshot(tx *gorm.DB, userId string, currency string, now time.Time, loc *time.Location) (*models.WealthSnapshot, error) {
	day := utils.StartOfDay(now, loc)

	liquidity, err := models.SumLiveBalances(tx, userId)
	if err != nil {
		return nil, utils.Persist("sum balances", err)
	}

	row := models.WealthSnapshot{
		UserId:         userId,
		Date:           day,
		Currency:       currency,
		LiquidityTotal: liquidity,
		NetWorth:       liquidity,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"liquidity_total", "is_deleted", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, utils.Persist("upsert snapshot", err)
	}

	err = tx.Model(&models.WealthSnapshot{}).
		Where("user_id = ? AND date >= ? AND date < ?", userId, day, day.AddDate(0, 0, 1)).
		Update("net_worth", gorm.Expr(netWorthExpr)).Error
	if err != nil {
		return nil, utils.Persist("recompute net worth", err)
	}

	snapshot, err := models.GetSnapshotForDay(tx, userId, day)
	if err != nil {
		return nil, utils.Persist("reload snapshot", err)
	}
	return snapshot, nil
}
