package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AssetValuation is an immutable point-in-time observation of an asset's value.
// Rows are appended, never updated, except for the soft-delete cascade.
type AssetValuation struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserId    string          `gorm:"size:64;not null;index" json:"userId"`
	AssetId   string          `gorm:"type:varchar(36);not null;index:idx_av_asset_date,priority:1" json:"assetId"`
	AssetType AssetType       `gorm:"size:20;not null" json:"assetType"`
	Date      time.Time       `gorm:"not null;index:idx_av_asset_date,priority:2" json:"date"`
	Value     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"value"`
	Currency  string          `gorm:"size:3;not null" json:"currency"`
	Reason    ValuationReason `gorm:"size:20;not null" json:"reason"`
	IsDeleted bool            `gorm:"not null;default:false" json:"isDeleted"`
	DeletedAt *time.Time      `json:"deletedAt"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (v *AssetValuation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// SoftDeleteValuations marks every live valuation of the asset deleted.
// It is the explicit cascade step of an account soft delete.
func SoftDeleteValuations(tx *gorm.DB, userId string, assetId string, now time.Time) (int64, error) {
	res := tx.Model(&AssetValuation{}).
		Where("user_id = ? AND asset_id = ? AND is_deleted = ?", userId, assetId, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	return res.RowsAffected, res.Error
}

// ListValuations returns the asset's valuation history, oldest first.
func ListValuations(tx *gorm.DB, userId string, assetId string, includeDeleted bool) ([]*AssetValuation, error) {
	q := tx.Where("user_id = ? AND asset_id = ?", userId, assetId)
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	var rows []*AssetValuation
	err := q.Order("date ASC").Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// LatestAnchorValuation returns the most recent opening/adjustment valuation of an asset.
func LatestAnchorValuation(tx *gorm.DB, userId string, assetId string) (*AssetValuation, error) {
	var row AssetValuation
	err := tx.Where("user_id = ? AND asset_id = ? AND reason IN ?", userId, assetId,
		[]ValuationReason{ValuationReasonOpening, ValuationReasonAdjustment}).
		Order("date DESC").Order("created_at DESC").
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
