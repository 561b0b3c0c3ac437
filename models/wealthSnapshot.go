package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WealthSnapshot is the daily net-worth aggregate.
//
// Grain: (user_id, date). The unique index is what makes the daily upsert race-free.
// Only liquidity_total is maintained here; the other asset-class totals are
// written by other producers and are read back when net_worth is recomputed.
type WealthSnapshot struct {
	ID       string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserId   string    `gorm:"size:64;not null;uniqueIndex:uniq_ws_user_date,priority:1" json:"userId"`
	Date     time.Time `gorm:"type:date;not null;uniqueIndex:uniq_ws_user_date,priority:2" json:"date"`
	Currency string    `gorm:"size:3;not null" json:"currency"`

	LiquidityTotal             decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"liquidityTotal"`
	MarketInvestmentsTotal     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"marketInvestmentsTotal"`
	CryptoInvestmentsTotal     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"cryptoInvestmentsTotal"`
	RetirementInvestmentsTotal decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"retirementInvestmentsTotal"`
	RealEstateInvestmentsTotal decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"realEstateInvestmentsTotal"`
	LiabilitiesTotal           decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"liabilitiesTotal"`
	NetWorth                   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"netWorth"`

	IsDeleted bool      `gorm:"not null;default:false" json:"isDeleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (s *WealthSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ComputeNetWorth is the sum of every asset-class total minus liabilities.
func (s WealthSnapshot) ComputeNetWorth() decimal.Decimal {
	return s.LiquidityTotal.
		Add(s.MarketInvestmentsTotal).
		Add(s.CryptoInvestmentsTotal).
		Add(s.RetirementInvestmentsTotal).
		Add(s.RealEstateInvestmentsTotal).
		Sub(s.LiabilitiesTotal)
}

// GetSnapshotForDay looks the day up over the half-open interval [day, day+1).
func GetSnapshotForDay(tx *gorm.DB, userId string, day time.Time) (*WealthSnapshot, error) {
	var snapshot WealthSnapshot
	err := tx.Where("user_id = ? AND date >= ? AND date < ?", userId, day, day.AddDate(0, 0, 1)).
		Take(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ListSnapshots returns the owner's snapshots within [from, to], oldest first.
// Zero bounds are open.
func ListSnapshots(tx *gorm.DB, userId string, from, to time.Time) ([]*WealthSnapshot, error) {
	q := tx.Where("user_id = ? AND is_deleted = ?", userId, false)
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date < ?", to.AddDate(0, 0, 1))
	}
	var rows []*WealthSnapshot
	err := q.Order("date ASC").Find(&rows).Error
	return rows, err
}

func CountSnapshotsForDay(tx *gorm.DB, userId string, day time.Time) (int64, error) {
	var count int64
	err := tx.Model(&WealthSnapshot{}).
		Where("user_id = ? AND date >= ? AND date < ?", userId, day, day.AddDate(0, 0, 1)).
		Count(&count).Error
	return count, err
}

// LatestSnapshotCurrency is the currency of the owner's most recent snapshot, or "" if none.
func LatestSnapshotCurrency(tx *gorm.DB, userId string) (string, error) {
	var snapshot WealthSnapshot
	err := tx.Select("currency").Where("user_id = ?", userId).Order("date DESC").Limit(1).Find(&snapshot).Error
	if err != nil {
		return "", err
	}
	return snapshot.Currency, nil
}
