package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buddybudget/wealth_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction moves value into, out of, or between liquidity accounts.
// Amount is always positive; Type decides the direction of the balance effect.
type Transaction struct {
	ID                     string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserId                 string          `gorm:"size:64;not null;index:idx_tx_user_date,priority:1" json:"userId"`
	AccountId              string          `gorm:"type:varchar(36);not null;index" json:"accountId"`
	DestinationAccountId   *string         `gorm:"type:varchar(36);index" json:"destinationAccountId"`
	IsExternalAccount      bool            `gorm:"not null;default:false" json:"isExternalAccount"`
	Date                   time.Time       `gorm:"not null;index:idx_tx_user_date,priority:2" json:"date"`
	Amount                 decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Currency               string          `gorm:"size:3;not null" json:"currency"`
	Type                   TransactionType `gorm:"size:16;not null" json:"type"`
	CategoryId             *string         `gorm:"type:varchar(36)" json:"categoryId"`
	Description            string          `gorm:"type:text" json:"description"`
	RecurringTransactionId *string         `gorm:"type:varchar(36)" json:"recurringTransactionId"`
	Tags                   StringList      `gorm:"type:text" json:"tags"`
	IsDeleted              bool            `gorm:"not null;default:false" json:"isDeleted"`
	DeletedAt              *time.Time      `json:"deletedAt"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// HasLedgerDestination is true for internal transfers.
func (t Transaction) HasLedgerDestination() bool {
	return t.Type == TransactionTypeTransfer && !t.IsExternalAccount && t.DestinationAccountId != nil && *t.DestinationAccountId != ""
}

// StringList is stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported tags value %T", value)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

func GetLiveTransaction(tx *gorm.DB, userId string, id string) (*Transaction, error) {
	var t Transaction
	err := tx.Where("user_id = ? AND id = ? AND is_deleted = ?", userId, id, false).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type TransactionFilter struct {
	AccountId string
	Limit     int
}

// ListLiveTransactions returns non-deleted transactions, newest date first.
func ListLiveTransactions(tx *gorm.DB, userId string, filter TransactionFilter) ([]*Transaction, error) {
	q := tx.Where("user_id = ? AND is_deleted = ?", userId, false)
	if filter.AccountId != "" {
		q = q.Where("(account_id = ? OR destination_account_id = ?)", filter.AccountId, filter.AccountId)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []*Transaction
	err := q.Order("date DESC").Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// ListAccountTransactionsSince returns every transaction touching the account
// created after since, deleted ones included.
func ListAccountTransactionsSince(tx *gorm.DB, userId string, accountId string, since time.Time) ([]*Transaction, error) {
	var rows []*Transaction
	err := tx.Where("user_id = ? AND (account_id = ? OR destination_account_id = ?) AND created_at > ?",
		userId, accountId, accountId, since).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListAccountTransactionsDeletedSince returns transactions created on or before
// since and deleted after it.
func ListAccountTransactionsDeletedSince(tx *gorm.DB, userId string, accountId string, since time.Time) ([]*Transaction, error) {
	var rows []*Transaction
	err := tx.Where("user_id = ? AND (account_id = ? OR destination_account_id = ?) AND created_at <= ? AND is_deleted = ? AND deleted_at > ?",
		userId, accountId, accountId, since, true, since).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func SoftDeleteTransaction(tx *gorm.DB, userId string, id string, now time.Time) error {
	res := tx.Model(&Transaction{}).
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
		return utils.ErrTransactionNotFound
	}
	return nil
}
