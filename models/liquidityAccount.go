package models

import (
	"errors"
	"time"

	"github.com/buddybudget/wealth_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LiquidityAccount is a checking/savings/cash account whose balance is tracked directly.
// Balance is the cached running total of the account's non-deleted transactions.
type LiquidityAccount struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserId    string          `gorm:"size:64;not null;index:idx_la_user_deleted,priority:1" json:"userId"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Type      AccountType     `gorm:"size:16;not null;default:'other'" json:"type"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	Currency  string          `gorm:"size:3;not null" json:"currency"`
	IsActive  *bool           `gorm:"not null;default:true" json:"isActive"`
	IsDeleted bool            `gorm:"not null;default:false;index:idx_la_user_deleted,priority:2" json:"isDeleted"`
	DeletedAt *time.Time      `json:"deletedAt"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a *LiquidityAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// GetLiveAccount loads a non-deleted account of the owner, or utils.ErrAccountNotFound.
func GetLiveAccount(tx *gorm.DB, userId string, id string) (*LiquidityAccount, error) {
	if id == "" {
		return nil, utils.ErrAccountNotFound
	}
	var account LiquidityAccount
	err := tx.Where("user_id = ? AND id = ? AND is_deleted = ?", userId, id, false).
		Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListLiveAccounts returns the owner's non-deleted accounts, highest balance first.
func ListLiveAccounts(tx *gorm.DB, userId string) ([]*LiquidityAccount, error) {
	var accounts []*LiquidityAccount
	err := tx.Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("balance DESC").Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

// SumLiveBalances is the full recomputation of an owner's liquidity.
func SumLiveBalances(tx *gorm.DB, userId string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := tx.Model(&LiquidityAccount{}).
		Select("COALESCE(SUM(balance), 0) AS total").
		Where("user_id = ? AND is_deleted = ?", userId, false).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// AdjustBalance adds delta to the stored balance in a single UPDATE.
func AdjustBalance(tx *gorm.DB, userId string, id string, delta decimal.Decimal, now time.Time) error {
	res := tx.Model(&LiquidityAccount{}).
		Where("user_id = ? AND id = ? AND is_deleted = ?", userId, id, false).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + CAST(? AS DECIMAL(20,4))", delta.String()),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrAccountNotFound
	}
	return nil
}

func SoftDeleteAccount(tx *gorm.DB, userId string, id string, now time.Time) error {
	res := tx.Model(&LiquidityAccount{}).
		Where("user_id = ? AND id = ? AND is_deleted = ?", userId, id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrAccountNotFound
	}
	return nil
}

// ListOwnerIds returns every owner with at least one account, deleted or not.
// Callers outside a request must bypass the owner guard.
func ListOwnerIds(tx *gorm.DB) ([]string, error) {
	var ids []string
	err := tx.Model(&LiquidityAccount{}).Distinct("user_id").Order("user_id ASC").Pluck("user_id", &ids).Error
	return ids, err
}
