package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"gorm.io/gorm"
)

// History is the audit trail for snapshot recomputes and other changes to derived data.
type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255;index" json:"reference_type"`
	UserId        int       `gorm:"index;not null;default:0" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	UserRole      string    `gorm:"size:50" json:"user_role"`
	CorrelationId string    `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	var history History

	ctx := tx.Statement.Context
	if before != nil {
		b, _ := json.Marshal(before)
		history.Before = string(b)
	}
	if after != nil {
		a, _ := json.Marshal(after)
		history.After = string(a)
	}

	// requests without an actor (cli tools, tests) are recorded as System
	history.UserId, _ = utils.GetUserIdFromContext(ctx)
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok || userName == "" {
		userName = "System"
	}
	history.UserName = userName
	history.UserRole, _ = utils.GetUserRoleFromContext(ctx)
	history.CorrelationId, _ = utils.GetCorrelationIdFromContext(ctx)

	history.ActionType = actionType
	history.Description = description
	history.ReferenceID = referenceId
	history.ReferenceType = referenceType

	return tx.Create(&history).Error
}

func SaveHistoryUpdate(tx *gorm.DB, id int, referenceType string, before interface{}, after interface{}, description string) error {
	return createHistory(tx, "UPDATE", id, referenceType, before, after, description)
}

func SaveHistoryDelete(tx *gorm.DB, id int, referenceType string, obj interface{}, description string) error {
	return createHistory(tx, "DELETE", id, referenceType, obj, nil, description)
}

func SaveHistoryRecompute(tx *gorm.DB, id int, before interface{}, after interface{}, strategy SnapshotStrategy) error {
	return createHistory(tx, "RECOMPUTE", id, "projects", before, after, "snapshot recomputed: "+string(strategy))
}

func GetHistories(ctx context.Context, referenceType string, referenceId int) ([]*History, error) {
	db := config.GetDB()
	var results []*History
	err := db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Order("id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
