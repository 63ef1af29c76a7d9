package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is a client payment against a project.
type Payment struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ProjectId int             `gorm:"index;not null" json:"project_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	DatePaid  MyDate          `gorm:"type:date;not null" json:"date_paid"`
	Reference string          `gorm:"size:100" json:"reference"`
	Note      string          `gorm:"type:text" json:"note"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "project_payments"
}

type NewPayment struct {
	Amount    decimal.Decimal `json:"amount"`
	DatePaid  MyDate          `json:"date_paid"`
	Reference string          `json:"reference" binding:"max=100"`
	Note      string          `json:"note"`
}

func (input *NewPayment) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("Amount", "gt=0")
	}
	if input.DatePaid.IsZero() {
		return utils.NewValidationError("DatePaid", "required")
	}
	return nil
}

func CreatePayment(ctx context.Context, projectId int, input *NewPayment) (*Payment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	payment := Payment{
		ProjectId: projectId,
		Amount:    input.Amount,
		DatePaid:  input.DatePaid,
		Reference: input.Reference,
		Note:      input.Note,
	}
	err := mutateProjectLedger(ctx, projectId, SnapshotStrategyPaymentLedger, "CreatePayment", func(tx *gorm.DB) error {
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func UpdatePayment(ctx context.Context, id int, input *NewPayment) (*Payment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	projectId, err := ledgerProjectId[Payment](ctx, id, "payment")
	if err != nil {
		return nil, err
	}

	var payment *Payment
	err = mutateProjectLedger(ctx, projectId, SnapshotStrategyPaymentLedger, "UpdatePayment", func(tx *gorm.DB) error {
		var err error
		if payment, err = reloadLedgerRow[Payment](tx, id, "payment"); err != nil {
			return err
		}
		payment.Amount = input.Amount
		payment.DatePaid = input.DatePaid
		payment.Reference = input.Reference
		payment.Note = input.Note
		return tx.Save(payment).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func DeletePayment(ctx context.Context, id int) (*Payment, error) {
	projectId, err := ledgerProjectId[Payment](ctx, id, "payment")
	if err != nil {
		return nil, err
	}

	var payment *Payment
	err = mutateProjectLedger(ctx, projectId, SnapshotStrategyPaymentLedger, "DeletePayment", func(tx *gorm.DB) error {
		var err error
		if payment, err = reloadLedgerRow[Payment](tx, id, "payment"); err != nil {
			return err
		}
		return tx.Delete(payment).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func GetPayments(ctx context.Context, projectId int) ([]*Payment, error) {
	db := config.GetDB()
	var results []*Payment
	err := db.WithContext(ctx).Where("project_id = ?", projectId).Order("date_paid, id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
