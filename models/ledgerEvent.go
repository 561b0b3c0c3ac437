package models

import (
	"encoding/json"
	"time"

	"github.com/buddybudget/wealth_backend/utils"
	"gorm.io/gorm"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

type LedgerEventType string

const (
	LedgerEventAccountCreated     LedgerEventType = "account.created"
	LedgerEventAccountUpdated     LedgerEventType = "account.updated"
	LedgerEventAccountDeleted     LedgerEventType = "account.deleted"
	LedgerEventTransactionCreated LedgerEventType = "transaction.created"
	LedgerEventTransactionDeleted LedgerEventType = "transaction.deleted"
)

// LedgerEvent is the outbox row written inside each mutation unit.
// Publishing happens after commit via the event dispatcher.
type LedgerEvent struct {
	ID            int             `gorm:"primaryKey;autoIncrement;index:idx_outbox_dispatch,priority:3" json:"id"`
	UserId        string          `gorm:"size:64;not null;index" json:"userId"`
	EventType     LedgerEventType `gorm:"size:40;not null" json:"eventType"`
	ReferenceId   string          `gorm:"type:varchar(36);not null" json:"referenceId"`
	OccurredAt    time.Time       `gorm:"not null" json:"occurredAt"`
	Payload       []byte          `gorm:"type:blob" json:"payload"`
	CorrelationId string          `gorm:"size:64;index" json:"correlationId"`

	PublishStatus    string     `gorm:"size:20;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publishStatus"`
	PublishedAt      *time.Time `json:"publishedAt"`
	PublishMessageId *string    `gorm:"size:255" json:"publishMessageId"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publishAttempts"`
	NextAttemptAt    *time.Time `gorm:"index:idx_outbox_dispatch,priority:2" json:"nextAttemptAt"`
	LockedAt         *time.Time `json:"lockedAt"`
	LockedBy         *string    `gorm:"size:100" json:"lockedBy"`
	LastPublishError *string    `gorm:"type:text" json:"lastPublishError"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// EnqueueLedgerEvent writes a PENDING outbox row with payload as JSON.
func EnqueueLedgerEvent(tx *gorm.DB, userId string, eventType LedgerEventType, referenceId string, occurredAt time.Time, correlationId string, payload any) (*LedgerEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	event := LedgerEvent{
		UserId:        userId,
		EventType:     eventType,
		ReferenceId:   referenceId,
		OccurredAt:    occurredAt,
		Payload:       raw,
		CorrelationId: correlationId,
		PublishStatus: OutboxPublishStatusPending,
	}
	if err := tx.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// RequeueLedgerEvent makes a FAILED or DEAD event eligible for the next dispatch.
func RequeueLedgerEvent(tx *gorm.DB, userId string, id int, now time.Time) (*LedgerEvent, error) {
	res := tx.Model(&LedgerEvent{}).
		Where("user_id = ? AND id = ? AND publish_status IN ?", userId, id,
			[]string{OutboxPublishStatusFailed, OutboxPublishStatusDead}).
		Updates(map[string]interface{}{
			"publish_status":     OutboxPublishStatusFailed,
			"publish_attempts":   0,
			"next_attempt_at":    &now,
			"locked_at":          nil,
			"locked_by":          nil,
			"last_publish_error": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrLedgerEventNotFound
	}
	var event LedgerEvent
	if err := tx.Where("user_id = ? AND id = ?", userId, id).Take(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}
