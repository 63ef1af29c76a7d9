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
)

var ErrPayrollLocked = errors.New("payroll is locked: cutoff already paid")

// Payroll is one worker's pay for a cutoff or a week. It carries no project; cost is spread
// over projects from attendance at report time.
type Payroll struct {
	ID          int             `gorm:"primary_key" json:"id"`
	WorkerName  string          `gorm:"size:255;index" json:"worker_name"`
	Role        string          `gorm:"size:100" json:"role"`
	Hours       decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"hours"`
	RatePerHour decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate_per_hour"`
	Gross       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"gross"`
	Deductions  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deductions"`
	Net         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net"`
	WeekStart   *MyDate         `gorm:"type:date" json:"week_start"`
	CutoffId    *int            `gorm:"index" json:"cutoff_id"`
	Status      PayrollStatus   `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayroll struct {
	WorkerName  string           `json:"worker_name" binding:"max=255"`
	Role        string           `json:"role" binding:"max=100"`
	Hours       decimal.Decimal  `json:"hours"`
	RatePerHour decimal.Decimal  `json:"rate_per_hour"`
	Gross       *decimal.Decimal `json:"gross"`
	Deductions  decimal.Decimal  `json:"deductions"`
	WeekStart   *MyDate          `json:"week_start"`
	CutoffId    *int             `json:"cutoff_id"`
}

func (input *NewPayroll) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Hours.IsNegative() {
		return utils.NewValidationError("Hours", "gte=0")
	}
	if input.RatePerHour.IsNegative() {
		return utils.NewValidationError("RatePerHour", "gte=0")
	}
	if input.Gross != nil && input.Gross.IsNegative() {
		return utils.NewValidationError("Gross", "gte=0")
	}
	if input.Deductions.IsNegative() {
		return utils.NewValidationError("Deductions", "gte=0")
	}
	return nil
}

// gross defaults to hours times rate
func (input *NewPayroll) gross() decimal.Decimal {
	if input.Gross != nil {
		return utils.RoundMoney(*input.Gross)
	}
	return utils.RoundMoney(input.Hours.Mul(input.RatePerHour))
}

// PayrollNet is gross minus deductions, rounded to cents.
func PayrollNet(gross decimal.Decimal, deductions decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(gross.Sub(deductions))
}

func (p *Payroll) apply(input *NewPayroll) {
	p.WorkerName = strings.TrimSpace(input.WorkerName)
	p.Role = input.Role
	p.Hours = input.Hours
	p.RatePerHour = input.RatePerHour
	p.Gross = input.gross()
	p.Deductions = input.Deductions
	p.Net = PayrollNet(p.Gross, p.Deductions)
	p.WeekStart = input.WeekStart
	if p.WeekStart != nil {
		ws := NewMyDate(p.WeekStart.Time().Year(), p.WeekStart.Time().Month(), p.WeekStart.Time().Day())
		p.WeekStart = &ws
	}
	p.CutoffId = input.CutoffId
}

// ensureCutoffOpen fails with ErrPayrollLocked when the cutoff has been paid.
func ensureCutoffOpen(tx *gorm.DB, cutoffId *int) error {
	if cutoffId == nil {
		return nil
	}
	cutoff, err := findPayrollCutoff(tx, *cutoffId, false)
	if err != nil {
		return err
	}
	if cutoff.IsPaid() {
		return ErrPayrollLocked
	}
	return nil
}

func findPayroll(tx *gorm.DB, id int) (*Payroll, error) {
	var payroll Payroll
	if err := tx.First(&payroll, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payroll %d: %w", id, utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	return &payroll, nil
}

func ensurePayrollEditable(tx *gorm.DB, payroll *Payroll) error {
	if payroll.Status == PayrollStatusPaid {
		return ErrPayrollLocked
	}
	return ensureCutoffOpen(tx, payroll.CutoffId)
}

func CreatePayroll(ctx context.Context, input *NewPayroll) (*Payroll, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	payroll := Payroll{Status: PayrollStatusPending}
	payroll.apply(input)

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCutoffOpen(tx, payroll.CutoffId); err != nil {
			return err
		}
		return tx.Create(&payroll).Error
	})
	if err != nil {
		return nil, err
	}
	return &payroll, nil
}

func UpdatePayroll(ctx context.Context, id int, input *NewPayroll) (*Payroll, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var payroll *Payroll
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if payroll, err = findPayroll(tx, id); err != nil {
			return err
		}
		if err := ensurePayrollEditable(tx, payroll); err != nil {
			return err
		}
		if err := ensureCutoffOpen(tx, input.CutoffId); err != nil {
			return err
		}
		payroll.apply(input)
		return tx.Save(payroll).Error
	})
	if err != nil {
		return nil, err
	}
	return payroll, nil
}

func DeletePayroll(ctx context.Context, id int) (*Payroll, error) {
	db := config.GetDB()
	var payroll *Payroll
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if payroll, err = findPayroll(tx, id); err != nil {
			return err
		}
		if err := ensurePayrollEditable(tx, payroll); err != nil {
			return err
		}
		return tx.Delete(payroll).Error
	})
	if err != nil {
		return nil, err
	}
	return payroll, nil
}

func GetPayroll(ctx context.Context, id int) (*Payroll, error) {
	db := config.GetDB()
	return findPayroll(db.WithContext(ctx), id)
}

func GetPayrolls(ctx context.Context, cutoffId *int, worker *string) ([]*Payroll, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if cutoffId != nil && *cutoffId > 0 {
		dbCtx = dbCtx.Where("cutoff_id = ?", *cutoffId)
	}
	if worker != nil && utils.NormalizeWorkerName(*worker) != "" {
		dbCtx = dbCtx.Where("LOWER(TRIM(worker_name)) = ?", utils.NormalizeWorkerName(*worker))
	}
	var results []*Payroll
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
