package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BuildBudget struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	ProjectId          int             `gorm:"uniqueIndex;not null" json:"project_id"`
	ContractAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"contract_amount"`
	TotalClientPayment decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_client_payment"`
	MaterialsCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"materials_cost"`
	LaborCost          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"labor_cost"`
	EquipmentCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"equipment_cost"`
	Remarks            string          `gorm:"type:text" json:"remarks"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBuildBudget struct {
	ContractAmount     decimal.Decimal `json:"contract_amount"`
	TotalClientPayment decimal.Decimal `json:"total_client_payment"`
	MaterialsCost      decimal.Decimal `json:"materials_cost"`
	LaborCost          decimal.Decimal `json:"labor_cost"`
	EquipmentCost      decimal.Decimal `json:"equipment_cost"`
	Remarks            string          `json:"remarks"`
}

func (input *NewBuildBudget) validate() error {
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"ContractAmount", input.ContractAmount},
		{"TotalClientPayment", input.TotalClientPayment},
		{"MaterialsCost", input.MaterialsCost},
		{"LaborCost", input.LaborCost},
		{"EquipmentCost", input.EquipmentCost},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return utils.NewValidationError(a.field, "gte=0")
		}
	}
	return nil
}

func findBuildBudget(tx *gorm.DB, projectId int) (*BuildBudget, error) {
	var rows []BuildBudget
	if err := tx.Where("project_id = ?", projectId).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func getOrCreateBuildBudget(tx *gorm.DB, projectId int) (*BuildBudget, error) {
	budget, err := findBuildBudget(tx, projectId)
	if err != nil || budget != nil {
		return budget, err
	}
	budget = &BuildBudget{ProjectId: projectId}
	if err := tx.Create(budget).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

func GetOrCreateBuildBudget(ctx context.Context, projectId int) (*BuildBudget, error) {
	db := config.GetDB()
	var budget *BuildBudget
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProjectExists(tx, projectId); err != nil {
			return err
		}
		var err error
		budget, err = getOrCreateBuildBudget(tx, projectId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func UpdateBuildBudget(ctx context.Context, projectId int, input *NewBuildBudget) (*BuildBudget, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	release := lockProject(ctx, projectId, "UpdateBuildBudget")
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if _, err := lockProjectForChange(tx, projectId); err != nil {
		tx.Rollback()
		return nil, err
	}

	budget, err := getOrCreateBuildBudget(tx, projectId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	before := *budget

	budget.ContractAmount = input.ContractAmount
	budget.TotalClientPayment = input.TotalClientPayment
	budget.MaterialsCost = input.MaterialsCost
	budget.LaborCost = input.LaborCost
	budget.EquipmentCost = input.EquipmentCost
	budget.Remarks = input.Remarks

	if err := tx.Save(budget).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := RecomputeProjectSnapshot(ctx, tx, projectId, SnapshotStrategyBudgetLedger); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, budget.ID, "build_budgets", before, budget, "build budget updated"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return budget, nil
}
