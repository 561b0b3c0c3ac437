package models

import "time"

type IdempotencyStatus string

const (
	IdempotencyStatusStarted   IdempotencyStatus = "STARTED"
	IdempotencyStatusSucceeded IdempotencyStatus = "SUCCEEDED"
	IdempotencyStatusFailed    IdempotencyStatus = "FAILED"
)

// IdempotencyKey makes client resubmissions of a write safe.
// Unique constraint: (user_id, scope, request_key).
type IdempotencyKey struct {
	ID         int               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId     string            `gorm:"size:64;not null;uniqueIndex:uniq_idem,priority:1" json:"userId"`
	Scope      string            `gorm:"size:100;not null;uniqueIndex:uniq_idem,priority:2" json:"scope"`
	RequestKey string            `gorm:"size:255;not null;uniqueIndex:uniq_idem,priority:3" json:"requestKey"`
	Status     IdempotencyStatus `gorm:"size:20;not null;index" json:"status"`
	ResourceId *string           `gorm:"type:varchar(36)" json:"resourceId"`
	LastError  *string           `gorm:"type:text" json:"lastError"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}
