package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is a construction cost booked against a project.
type Expense struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProjectId   int             `gorm:"index;not null" json:"project_id"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	ExpenseDate MyDate          `gorm:"type:date;not null" json:"expense_date"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Expense) TableName() string {
	return "project_expenses"
}

type NewExpense struct {
	Category    string          `json:"category" binding:"required,max=100"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate MyDate          `json:"expense_date"`
	Description string          `json:"description"`
}

func (input *NewExpense) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Amount.IsNegative() {
		return utils.NewValidationError("Amount", "gte=0")
	}
	if input.ExpenseDate.IsZero() {
		return utils.NewValidationError("ExpenseDate", "required")
	}
	return nil
}

func expenseAmounts(tx *gorm.DB, projectId int) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := tx.Model(&Expense{}).Where("project_id = ?", projectId).Pluck("amount", &amounts).Error; err != nil {
		return nil, err
	}
	return amounts, nil
}

func CreateExpense(ctx context.Context, projectId int, input *NewExpense) (*Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	expense := Expense{
		ProjectId:   projectId,
		Category:    input.Category,
		Amount:      input.Amount,
		ExpenseDate: input.ExpenseDate,
		Description: input.Description,
	}
	err := mutateProjectLedger(ctx, projectId, SnapshotStrategyExpenseLedger, "CreateExpense", func(tx *gorm.DB) error {
		return tx.Create(&expense).Error
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func UpdateExpense(ctx context.Context, id int, input *NewExpense) (*Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	projectId, err := ledgerProjectId[Expense](ctx, id, "expense")
	if err != nil {
		return nil, err
	}

	var expense *Expense
	err = mutateProjectLedger(ctx, projectId, SnapshotStrategyExpenseLedger, "UpdateExpense", func(tx *gorm.DB) error {
		var err error
		if expense, err = reloadLedgerRow[Expense](tx, id, "expense"); err != nil {
			return err
		}
		expense.Category = input.Category
		expense.Amount = input.Amount
		expense.ExpenseDate = input.ExpenseDate
		expense.Description = input.Description
		return tx.Save(expense).Error
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func DeleteExpense(ctx context.Context, id int) (*Expense, error) {
	projectId, err := ledgerProjectId[Expense](ctx, id, "expense")
	if err != nil {
		return nil, err
	}

	var expense *Expense
	err = mutateProjectLedger(ctx, projectId, SnapshotStrategyExpenseLedger, "DeleteExpense", func(tx *gorm.DB) error {
		var err error
		if expense, err = reloadLedgerRow[Expense](tx, id, "expense"); err != nil {
			return err
		}
		return tx.Delete(expense).Error
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func GetExpenses(ctx context.Context, projectId int) ([]*Expense, error) {
	db := config.GetDB()
	var results []*Expense
	err := db.WithContext(ctx).Where("project_id = ?", projectId).Order("expense_date, id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetExpenseTotalsByProject sums expense amounts per project.
func GetExpenseTotalsByProject(ctx context.Context) (map[int]decimal.Decimal, error) {
	db := config.GetDB()
	var rows []Expense
	if err := db.WithContext(ctx).Select("project_id", "amount").Find(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[int]decimal.Decimal)
	for _, row := range rows {
		totals[row.ProjectId] = totals[row.ProjectId].Add(row.Amount)
	}
	return totals, nil
}
