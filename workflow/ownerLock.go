package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const ownerLockTimeoutSeconds = 30

// AcquireOwnerWriteLock serializes ledger writes per owner across instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same *gorm.DB that runs the transaction.
// Other dialects serialize writers themselves and skip it.
func AcquireOwnerWriteLock(conn *gorm.DB, userId string) error {
	if conn.Dialector.Name() != "mysql" {
		return nil
	}
	lockName := fmt.Sprintf("wealth:%s", userId)
	var ok int
	if err := conn.Raw("SELECT GET_LOCK(?, ?)", lockName, ownerLockTimeoutSeconds).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire write lock for user_id=%s", userId)
	}
	return nil
}

func ReleaseOwnerWriteLock(conn *gorm.DB, userId string) {
	if conn.Dialector.Name() != "mysql" {
		return
	}
	lockName := fmt.Sprintf("wealth:%s", userId)
	var _ok int
	_ = conn.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// obtainRedisLock is a best-effort optimization in front of the database lock.
// Failure to obtain it never blocks the write.
func obtainRedisLock(ctx context.Context, locker *redislock.Client, logger *logrus.Logger, userId string, op string) func() {
	noop := func() {}
	if locker == nil {
		return noop
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("lock:wealth:%s", userId), ownerLockTimeoutSeconds*time.Second, nil)
	if err != nil {
		if logger != nil {
			msg := "error obtaining redis lock; proceeding without redis lock: " + err.Error()
			if errors.Is(err, redislock.ErrNotObtained) {
				msg = "could not obtain redis lock; proceeding without redis lock"
			}
			logger.WithFields(logrus.Fields{
				"field":   op,
				"user_id": userId,
			}).Warn(msg)
		}
		return noop
	}
	return func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && logger != nil {
			logger.WithFields(logrus.Fields{
				"field":   op,
				"user_id": userId,
			}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}
}
