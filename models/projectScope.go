package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectScope is a unit of work whose progress feeds the project's overall progress.
type ProjectScope struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ProjectId       int             `gorm:"index;not null" json:"project_id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	ProgressPercent decimal.Decimal `gorm:"type:decimal(7,2);default:0" json:"progress_percent"`
	Status          string          `gorm:"size:50" json:"status"`
	Remarks         string          `gorm:"type:text" json:"remarks"`
	ContractAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"contract_amount"`
	WeightPercent   decimal.Decimal `gorm:"type:decimal(7,2);default:0" json:"weight_percent"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProjectScope struct {
	Name            string          `json:"name" binding:"required,max=255"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	Status          string          `json:"status" binding:"max=50"`
	Remarks         string          `json:"remarks"`
	ContractAmount  decimal.Decimal `json:"contract_amount"`
	WeightPercent   decimal.Decimal `json:"weight_percent"`
}

func (input *NewProjectScope) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.ContractAmount.IsNegative() {
		return utils.NewValidationError("ContractAmount", "gte=0")
	}
	if input.WeightPercent.IsNegative() {
		return utils.NewValidationError("WeightPercent", "gte=0")
	}
	return nil
}

// progress is clamped rather than rejected
func (s *ProjectScope) apply(input *NewProjectScope) {
	s.Name = input.Name
	s.ProgressPercent = utils.ClampDecimal(input.ProgressPercent, utils.DecimalZero, utils.DecimalOneHundred)
	s.Status = input.Status
	s.Remarks = input.Remarks
	s.ContractAmount = input.ContractAmount
	s.WeightPercent = input.WeightPercent
}

func CreateProjectScope(ctx context.Context, projectId int, input *NewProjectScope) (*ProjectScope, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	scope := ProjectScope{ProjectId: projectId}
	scope.apply(input)

	err := mutateProjectLedger(ctx, projectId, SnapshotStrategyScopeProgress, "CreateProjectScope", func(tx *gorm.DB) error {
		return tx.Create(&scope).Error
	})
	if err != nil {
		return nil, err
	}
	return &scope, nil
}

func UpdateProjectScope(ctx context.Context, id int, input *NewProjectScope) (*ProjectScope, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	projectId, err := ledgerProjectId[ProjectScope](ctx, id, "project scope")
	if err != nil {
		return nil, err
	}

	var scope *ProjectScope
	err = mutateProjectLedger(ctx, projectId, SnapshotStrategyScopeProgress, "UpdateProjectScope", func(tx *gorm.DB) error {
		var err error
		if scope, err = reloadLedgerRow[ProjectScope](tx, id, "project scope"); err != nil {
			return err
		}
		scope.apply(input)
		return tx.Save(scope).Error
	})
	if err != nil {
		return nil, err
	}
	return scope, nil
}

func DeleteProjectScope(ctx context.Context, id int) (*ProjectScope, error) {
	projectId, err := ledgerProjectId[ProjectScope](ctx, id, "project scope")
	if err != nil {
		return nil, err
	}

	var scope *ProjectScope
	err = mutateProjectLedger(ctx, projectId, SnapshotStrategyScopeProgress, "DeleteProjectScope", func(tx *gorm.DB) error {
		var err error
		if scope, err = reloadLedgerRow[ProjectScope](tx, id, "project scope"); err != nil {
			return err
		}
		return tx.Delete(scope).Error
	})
	if err != nil {
		return nil, err
	}
	return scope, nil
}

func GetProjectScopes(ctx context.Context, projectId int) ([]*ProjectScope, error) {
	db := config.GetDB()
	var results []*ProjectScope
	if err := db.WithContext(ctx).Where("project_id = ?", projectId).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetAllProjectScopes(ctx context.Context) ([]ProjectScope, error) {
	db := config.GetDB()
	var results []ProjectScope
	if err := db.WithContext(ctx).Order("project_id, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
