package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/sirupsen/logrus"
)

const projectLockTTL = 30 * time.Second

// lockProject is taken by every project writer before its transaction begins.
var lockProject = obtainProjectLock

// obtainProjectLock takes a best-effort Redis lock around a project mutation.
// The project row lock taken inside the transaction is what actually serializes writers;
// this only keeps concurrent requests for the same project from piling up on the database.
// The returned func always releases safely, even when no lock was obtained.
func obtainProjectLock(ctx context.Context, projectId int, funcName string) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	logger := config.GetLogger()
	key := fmt.Sprintf("lock:project:%d", projectId)

	lock, err := locker.Obtain(ctx, key, projectLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if err != nil {
		msg := "error obtaining redis lock; proceeding without redis lock"
		if errors.Is(err, redislock.ErrNotObtained) {
			msg = "could not obtain redis lock; proceeding without redis lock"
		}
		logger.WithFields(logrus.Fields{
			"field":      funcName,
			"project_id": projectId,
		}).Warn(msg + ": " + err.Error())
		return func() {}
	}
	return func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			logger.WithFields(logrus.Fields{
				"field":      funcName,
				"project_id": projectId,
			}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}
}
