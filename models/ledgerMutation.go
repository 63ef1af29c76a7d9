package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"gorm.io/gorm"
)

// mutateProjectLedger runs fn against a sub-ledger of projectId and recomputes the project snapshot
// with strategy before committing. The project row is locked for the whole transaction.
func mutateProjectLedger(ctx context.Context, projectId int, strategy SnapshotStrategy, funcName string, fn func(tx *gorm.DB) error) error {
	release := lockProject(ctx, projectId, funcName)
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if _, err := lockProjectForChange(tx, projectId); err != nil {
		tx.Rollback()
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := RecomputeProjectSnapshot(ctx, tx, projectId, strategy); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// ledgerProjectId finds the owning project of a sub-ledger row before its project is locked.
func ledgerProjectId[T any](ctx context.Context, id int, label string) (int, error) {
	db := config.GetDB()
	var projectIds []int
	var model T
	if err := db.WithContext(ctx).Model(&model).Where("id = ?", id).Limit(1).Pluck("project_id", &projectIds).Error; err != nil {
		return 0, err
	}
	if len(projectIds) == 0 {
		return 0, fmt.Errorf("%s %d: %w", label, id, utils.ErrorRecordNotFound)
	}
	return projectIds[0], nil
}

// reloadLedgerRow re-reads a sub-ledger row inside tx once the project is locked.
func reloadLedgerRow[T any](tx *gorm.DB, id int, label string) (*T, error) {
	var row T
	if err := tx.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %d: %w", label, id, utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	return &row, nil
}
