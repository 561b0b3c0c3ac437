package models

import (
	"time"

	"github.com/buddybudget/wealth_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is maintained by the category service; this backend only checks existence.
type Category struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserId    string    `gorm:"size:64;not null;index" json:"userId"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Type      string    `gorm:"size:16" json:"type"`
	IsDeleted bool      `gorm:"not null;default:false" json:"isDeleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func EnsureCategory(tx *gorm.DB, userId string, id string) error {
	var count int64
	if err := tx.Model(&Category{}).
		Where("user_id = ? AND id = ? AND is_deleted = ?", userId, id, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.ErrCategoryNotFound
	}
	return nil
}
