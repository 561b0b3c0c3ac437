package workflow

import (
	"errors"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// BeginIdempotency claims (userId, scope, requestKey) inside the caller's transaction.
// If the key already SUCCEEDED it returns the id of the resource that request created.
// A STARTED key that is not ours means a concurrent duplicate: utils.ErrIdempotencyConflict.
func BeginIdempotency(tx *gorm.DB, userId, scope, requestKey string) (existingResourceId string, err error) {
	var existing models.IdempotencyKey
	err = tx.Where("user_id = ? AND scope = ? AND request_key = ?", userId, scope, requestKey).
		Take(&existing).Error
	switch {
	case err == nil:
		switch existing.Status {
		case models.IdempotencyStatusSucceeded:
			return utils.DereferencePtr(existing.ResourceId), nil
		case models.IdempotencyStatusStarted:
			return "", utils.ErrIdempotencyConflict
		default:
			return "", tx.Model(&models.IdempotencyKey{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{"status": models.IdempotencyStatusStarted, "last_error": nil}).Error
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	key := models.IdempotencyKey{
		UserId:     userId,
		Scope:      scope,
		RequestKey: requestKey,
		Status:     models.IdempotencyStatusStarted,
	}
	if err := tx.Create(&key).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return "", utils.ErrIdempotencyConflict
		}
		return "", err
	}
	return "", nil
}

func MarkIdempotencySucceeded(tx *gorm.DB, userId, scope, requestKey, resourceId string) error {
	return tx.Model(&models.IdempotencyKey{}).
		Where("user_id = ? AND scope = ? AND request_key = ?", userId, scope, requestKey).
		Updates(map[string]interface{}{"status": models.IdempotencyStatusSucceeded, "resource_id": resourceId, "last_error": nil}).Error
}
