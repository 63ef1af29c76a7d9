package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayrollCutoff is a pay period. Payroll generated against it is locked once it is paid.
type PayrollCutoff struct {
	ID        int                 `gorm:"primary_key" json:"id"`
	StartDate MyDate              `gorm:"type:date;not null" json:"start_date"`
	EndDate   MyDate              `gorm:"type:date;not null" json:"end_date"`
	Status    PayrollCutoffStatus `gorm:"size:20;not null;default:'open'" json:"status"`
	PaidAt    *time.Time          `json:"paid_at"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayrollCutoff struct {
	StartDate MyDate `json:"start_date"`
	EndDate   MyDate `json:"end_date"`
}

// GeneratePayrollInput prices attendance hours. Rates are keyed by worker name (any case);
// workers without an entry get DefaultRatePerHour.
type GeneratePayrollInput struct {
	DefaultRatePerHour decimal.Decimal            `json:"default_rate_per_hour"`
	Rates              map[string]decimal.Decimal `json:"rates"`

	rateByWorker map[string]decimal.Decimal
}

func (c PayrollCutoff) IsPaid() bool {
	return c.Status == PayrollCutoffStatusPaid
}

func (input *NewPayrollCutoff) validate() error {
	if input.StartDate.IsZero() {
		return utils.NewValidationError("StartDate", "required")
	}
	if input.EndDate.IsZero() {
		return utils.NewValidationError("EndDate", "required")
	}
	if input.EndDate.Time().Before(input.StartDate.Time()) {
		return utils.NewValidationError("EndDate", "gtefield=StartDate")
	}
	return nil
}

func (input *GeneratePayrollInput) validate() error {
	if input.DefaultRatePerHour.IsNegative() {
		return utils.NewValidationError("DefaultRatePerHour", "gte=0")
	}
	input.rateByWorker = make(map[string]decimal.Decimal, len(input.Rates))
	for worker, rate := range input.Rates {
		if rate.IsNegative() {
			return utils.NewValidationError("Rates["+worker+"]", "gte=0")
		}
		key := utils.NormalizeWorkerName(worker)
		if key == "" {
			return utils.NewValidationError("Rates["+worker+"]", "required")
		}
		// "Juan" and "juan " are the same worker
		if _, dup := input.rateByWorker[key]; dup {
			return utils.NewValidationError("Rates["+worker+"]", "unique")
		}
		input.rateByWorker[key] = rate
	}
	return nil
}

// rateFor expects a normalized worker key; validate must have run.
func (input *GeneratePayrollInput) rateFor(workerKey string) decimal.Decimal {
	if rate, ok := input.rateByWorker[workerKey]; ok {
		return rate
	}
	return input.DefaultRatePerHour
}

func CreatePayrollCutoff(ctx context.Context, input *NewPayrollCutoff) (*PayrollCutoff, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	cutoff := PayrollCutoff{
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    PayrollCutoffStatusOpen,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&cutoff).Error; err != nil {
		return nil, err
	}
	return &cutoff, nil
}

func findPayrollCutoff(tx *gorm.DB, id int, forUpdate bool) (*PayrollCutoff, error) {
	var cutoff PayrollCutoff
	if forUpdate {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := tx.First(&cutoff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payroll cutoff %d: %w", id, utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	return &cutoff, nil
}

func GetPayrollCutoff(ctx context.Context, id int) (*PayrollCutoff, error) {
	db := config.GetDB()
	return findPayrollCutoff(db.WithContext(ctx), id, false)
}

func GetPayrollCutoffs(ctx context.Context) ([]*PayrollCutoff, error) {
	db := config.GetDB()
	var results []*PayrollCutoff
	if err := db.WithContext(ctx).Order("start_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func getPayrollCutoffMap(tx *gorm.DB) (map[int]PayrollCutoff, error) {
	var cutoffs []PayrollCutoff
	if err := tx.Find(&cutoffs).Error; err != nil {
		return nil, err
	}
	result := make(map[int]PayrollCutoff, len(cutoffs))
	for _, c := range cutoffs {
		result[c.ID] = c
	}
	return result, nil
}

type workerHours struct {
	name  string
	role  string
	hours decimal.Decimal
}

// groupWorkerHours sums hours per normalized worker name, keeping first-seen order and
// the first-seen spelling of the name.
func groupWorkerHours(attendances []Attendance) []*workerHours {
	var ordered []*workerHours
	byKey := make(map[string]*workerHours)
	for _, a := range attendances {
		key := utils.NormalizeWorkerName(a.WorkerName)
		if key == "" {
			continue
		}
		w, ok := byKey[key]
		if !ok {
			w = &workerHours{name: a.WorkerName, role: a.Role}
			byKey[key] = w
			ordered = append(ordered, w)
		}
		w.hours = w.hours.Add(a.Hours)
	}
	return ordered
}

// GeneratePayrollForCutoff rebuilds the pending payroll of a cutoff from the attendance inside its
// date range. Gross is hours times rate; net starts equal to gross.
func GeneratePayrollForCutoff(ctx context.Context, cutoffId int, input *GeneratePayrollInput) ([]*Payroll, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	cutoff, err := findPayrollCutoff(tx, cutoffId, true)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if cutoff.IsPaid() {
		tx.Rollback()
		return nil, ErrPayrollLocked
	}

	attendances, err := getAttendancesBetween(tx, cutoff.StartDate, cutoff.EndDate)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("cutoff_id = ? AND status = ?", cutoffId, PayrollStatusPending).Delete(&Payroll{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var payrolls []*Payroll
	for _, w := range groupWorkerHours(attendances) {
		if !w.hours.IsPositive() {
			continue
		}
		rate := input.rateFor(utils.NormalizeWorkerName(w.name))
		gross := utils.RoundMoney(w.hours.Mul(rate))
		id := cutoff.ID
		payroll := &Payroll{
			WorkerName:  w.name,
			Role:        w.role,
			Hours:       w.hours,
			RatePerHour: rate,
			Gross:       gross,
			Deductions:  decimal.Zero,
			Net:         gross,
			CutoffId:    &id,
			Status:      PayrollStatusPending,
		}
		if err := tx.Create(payroll).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		payrolls = append(payrolls, payroll)
	}

	before := *cutoff
	cutoff.Status = PayrollCutoffStatusGenerated
	if err := tx.Save(cutoff).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, cutoff.ID, "payroll_cutoffs", before, cutoff,
		fmt.Sprintf("payroll generated for %d workers", len(payrolls))); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return payrolls, nil
}

// MarkPayrollCutoffPaid closes the cutoff and every payroll row linked to it.
func MarkPayrollCutoffPaid(ctx context.Context, cutoffId int) (*PayrollCutoff, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	cutoff, err := findPayrollCutoff(tx, cutoffId, true)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if cutoff.IsPaid() {
		tx.Rollback()
		return cutoff, nil
	}

	before := *cutoff
	now := time.Now()
	cutoff.Status = PayrollCutoffStatusPaid
	cutoff.PaidAt = &now
	if err := tx.Save(cutoff).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&Payroll{}).Where("cutoff_id = ?", cutoffId).Update("status", PayrollStatusPaid).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, cutoff.ID, "payroll_cutoffs", before, cutoff, "payroll cutoff marked paid"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return cutoff, nil
}
