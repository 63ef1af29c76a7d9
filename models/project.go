package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Project carries the cached snapshot fields derived from the sub-ledgers.
type Project struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	Name               string          `gorm:"size:255;not null" json:"name"`
	Code               string          `gorm:"size:50;index" json:"code"`
	ClientName         string          `gorm:"size:255" json:"client_name"`
	Location           string          `gorm:"size:255" json:"location"`
	ContractAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"contract_amount"`
	DesignFee          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"design_fee"`
	ConstructionCost   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"construction_cost"`
	TotalClientPayment decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_client_payment"`
	RemainingBalance   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"remaining_balance"`
	LastPaidDate       *MyDate         `gorm:"type:date" json:"last_paid_date"`
	OverallProgress    int             `gorm:"not null;default:0" json:"overall_progress"`
	Status             string          `gorm:"size:50" json:"status"`
	Phase              string          `gorm:"size:50" json:"phase"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProject struct {
	Name           string          `json:"name" binding:"required,max=255"`
	Code           string          `json:"code" binding:"max=50"`
	ClientName     string          `json:"client_name" binding:"max=255"`
	Location       string          `json:"location" binding:"max=255"`
	ContractAmount decimal.Decimal `json:"contract_amount"`
	Status         string          `json:"status" binding:"max=50"`
	Phase          string          `json:"phase" binding:"max=50"`
}

// NewProjectFinancials is the manual "financials" override screen.
type NewProjectFinancials struct {
	ContractAmount     decimal.Decimal `json:"contract_amount"`
	DesignFee          decimal.Decimal `json:"design_fee"`
	ConstructionCost   decimal.Decimal `json:"construction_cost"`
	TotalClientPayment decimal.Decimal `json:"total_client_payment"`
}

func (p *Project) refreshRemainingBalance() {
	p.RemainingBalance = p.ContractAmount.Sub(p.TotalClientPayment)
}

func (input *NewProjectFinancials) validate() error {
	fields := map[string]decimal.Decimal{
		"ContractAmount":     input.ContractAmount,
		"DesignFee":          input.DesignFee,
		"ConstructionCost":   input.ConstructionCost,
		"TotalClientPayment": input.TotalClientPayment,
	}
	for name, value := range fields {
		if value.IsNegative() {
			return utils.NewValidationError(name, "gte=0")
		}
	}
	return nil
}

func CreateProject(ctx context.Context, input *NewProject) (*Project, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.ContractAmount.IsNegative() {
		return nil, utils.NewValidationError("ContractAmount", "gte=0")
	}

	project := Project{
		Name:           strings.TrimSpace(input.Name),
		Code:           strings.TrimSpace(input.Code),
		ClientName:     input.ClientName,
		Location:       input.Location,
		ContractAmount: input.ContractAmount,
		Status:         input.Status,
		Phase:          input.Phase,
	}
	project.refreshRemainingBalance()

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProjectFinancials is the manual override; remaining balance is always derived.
func UpdateProjectFinancials(ctx context.Context, id int, input *NewProjectFinancials) (*Project, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	release := lockProject(ctx, id, "UpdateProjectFinancials")
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	project, err := lockProjectForChange(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	before := *project

	project.ContractAmount = input.ContractAmount
	project.DesignFee = input.DesignFee
	project.ConstructionCost = input.ConstructionCost
	project.TotalClientPayment = input.TotalClientPayment
	project.refreshRemainingBalance()

	if err := tx.Save(project).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, project.ID, "projects", before, project, "manual financials override"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return project, nil
}

func UpdateProjectPhase(ctx context.Context, id int, phase string) (*Project, error) {
	phase = strings.TrimSpace(phase)
	if phase == "" {
		return nil, utils.NewValidationError("Phase", "required")
	}

	release := lockProject(ctx, id, "UpdateProjectPhase")
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	project, err := lockProjectForChange(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	project.Phase = phase
	if err := tx.Model(project).Update("phase", phase).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the project together with every sub-ledger row keyed to it.
// Attendance rows are detached (project_id set to null) because they still back payroll.
func DeleteProject(ctx context.Context, id int) (*Project, error) {
	release := lockProject(ctx, id, "DeleteProject")
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	project, err := lockProjectForChange(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, model := range []interface{}{&DesignBudget{}, &BuildBudget{}, &Payment{}, &Expense{}, &ProjectScope{}} {
		if err := tx.Where("project_id = ?", id).Delete(model).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Model(&Attendance{}).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Delete(project).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveHistoryDelete(tx, project.ID, "projects", project, "project deleted"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return project, nil
}

func GetProject(ctx context.Context, id int) (*Project, error) {
	db := config.GetDB()
	var project Project
	if err := db.WithContext(ctx).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	return &project, nil
}

func GetProjects(ctx context.Context, name *string) ([]*Project, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if name != nil && strings.TrimSpace(*name) != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+strings.TrimSpace(*name)+"%")
	}
	var results []*Project
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// lockProjectForChange loads the project row with FOR UPDATE inside tx.
// SQLite ignores the locking clause.
func lockProjectForChange(tx *gorm.DB, id int) (*Project, error) {
	var project Project
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	return &project, nil
}

// ensureProjectExists is the cheap existence check for child-row writes.
func ensureProjectExists(tx *gorm.DB, id int) error {
	var count int64
	if err := tx.Model(&Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("project %d: %w", id, utils.ErrorRecordNotFound)
	}
	return nil
}
