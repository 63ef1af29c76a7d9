package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DesignBudget struct {
	ID                     int                  `gorm:"primary_key" json:"id"`
	ProjectId              int                  `gorm:"uniqueIndex;not null" json:"project_id"`
	ContractAmount         decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"contract_amount"`
	Downpayment            decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"downpayment"`
	TotalReceived          decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_received"`
	OfficePayrollDeduction decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"office_payroll_deduction"`
	Progress               int                  `gorm:"not null;default:0" json:"progress"`
	ApprovalStatus         DesignApprovalStatus `gorm:"size:20;not null;default:'pending'" json:"approval_status"`
	Remarks                string               `gorm:"type:text" json:"remarks"`
	CreatedAt              time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDesignBudget struct {
	ContractAmount         decimal.Decimal      `json:"contract_amount"`
	Downpayment            decimal.Decimal      `json:"downpayment"`
	TotalReceived          decimal.Decimal      `json:"total_received"`
	OfficePayrollDeduction decimal.Decimal      `json:"office_payroll_deduction"`
	Progress               int                  `json:"progress" binding:"gte=0,lte=100"`
	ApprovalStatus         DesignApprovalStatus `json:"approval_status"`
	Remarks                string               `json:"remarks"`
}

func (input *NewDesignBudget) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.ContractAmount.IsNegative() {
		return utils.NewValidationError("ContractAmount", "gte=0")
	}
	if input.Downpayment.IsNegative() {
		return utils.NewValidationError("Downpayment", "gte=0")
	}
	if input.TotalReceived.IsNegative() {
		return utils.NewValidationError("TotalReceived", "gte=0")
	}
	if input.OfficePayrollDeduction.IsNegative() {
		return utils.NewValidationError("OfficePayrollDeduction", "gte=0")
	}
	if input.ApprovalStatus == "" {
		input.ApprovalStatus = DesignApprovalStatusPending
	}
	if !input.ApprovalStatus.IsValid() {
		return utils.NewValidationError("ApprovalStatus", "oneof=pending approved rejected")
	}
	return nil
}

// findDesignBudget returns nil without error when the project has no design budget yet.
func findDesignBudget(tx *gorm.DB, projectId int) (*DesignBudget, error) {
	var rows []DesignBudget
	if err := tx.Where("project_id = ?", projectId).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func getOrCreateDesignBudget(tx *gorm.DB, projectId int) (*DesignBudget, error) {
	budget, err := findDesignBudget(tx, projectId)
	if err != nil || budget != nil {
		return budget, err
	}
	budget = &DesignBudget{
		ProjectId:      projectId,
		ApprovalStatus: DesignApprovalStatusPending,
	}
	if err := tx.Create(budget).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

// GetOrCreateDesignBudget lazily creates the zero-valued design budget on first access.
func GetOrCreateDesignBudget(ctx context.Context, projectId int) (*DesignBudget, error) {
	db := config.GetDB()
	var budget *DesignBudget
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProjectExists(tx, projectId); err != nil {
			return err
		}
		var err error
		budget, err = getOrCreateDesignBudget(tx, projectId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// designProgressWithBaseline raises the requested progress to the configured baseline the first
// time a downpayment is recorded.
func designProgressWithBaseline(previousDownpayment decimal.Decimal, input *NewDesignBudget, baseline int) int {
	progress := input.Progress
	if !previousDownpayment.IsPositive() && input.Downpayment.IsPositive() && progress < baseline {
		progress = baseline
	}
	return utils.ClampPercentInt(progress)
}

// UpdateDesignBudget saves the design budget and recomputes the project snapshot from the budget
// ledgers in the same transaction. An approved design also moves the project to the post-design phase.
func UpdateDesignBudget(ctx context.Context, projectId int, input *NewDesignBudget) (*DesignBudget, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	release := lockProject(ctx, projectId, "UpdateDesignBudget")
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if _, err := lockProjectForChange(tx, projectId); err != nil {
		tx.Rollback()
		return nil, err
	}

	budget, err := getOrCreateDesignBudget(tx, projectId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	before := *budget

	budget.Progress = designProgressWithBaseline(before.Downpayment, input, config.DesignDownpaymentProgressBaseline())
	budget.ContractAmount = input.ContractAmount
	budget.Downpayment = input.Downpayment
	budget.TotalReceived = input.TotalReceived
	budget.OfficePayrollDeduction = input.OfficePayrollDeduction
	budget.ApprovalStatus = input.ApprovalStatus
	budget.Remarks = input.Remarks

	if err := tx.Save(budget).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if budget.ApprovalStatus == DesignApprovalStatusApproved {
		if err := applyPostDesignPhase(tx, projectId); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if _, err := RecomputeProjectSnapshot(ctx, tx, projectId, SnapshotStrategyBudgetLedger); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, budget.ID, "design_budgets", before, budget, "design budget updated"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return budget, nil
}

// applyPostDesignPhase is skipped when the projects table carries no phase column.
func applyPostDesignPhase(tx *gorm.DB, projectId int) error {
	if !tx.Migrator().HasColumn(&Project{}, "phase") {
		return nil
	}
	return tx.Model(&Project{}).Where("id = ?", projectId).Update("phase", config.PostDesignPhase()).Error
}
