package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/utils"
)

type DesignApprovalStatus string

const (
	DesignApprovalStatusPending  DesignApprovalStatus = "pending"
	DesignApprovalStatusApproved DesignApprovalStatus = "approved"
	DesignApprovalStatusRejected DesignApprovalStatus = "rejected"
)

func (s DesignApprovalStatus) IsValid() bool {
	switch s {
	case DesignApprovalStatusPending, DesignApprovalStatusApproved, DesignApprovalStatusRejected:
		return true
	}
	return false
}

type PayrollCutoffStatus string

const (
	PayrollCutoffStatusOpen      PayrollCutoffStatus = "open"
	PayrollCutoffStatusGenerated PayrollCutoffStatus = "generated"
	PayrollCutoffStatusPaid      PayrollCutoffStatus = "paid"
)

type PayrollStatus string

const (
	PayrollStatusPending PayrollStatus = "pending"
	PayrollStatusPaid    PayrollStatus = "paid"
)

// SnapshotStrategy names the sub-ledger family whose change triggered a project recompute.
type SnapshotStrategy string

const (
	SnapshotStrategyPaymentLedger SnapshotStrategy = "payment_ledger"
	SnapshotStrategyBudgetLedger  SnapshotStrategy = "budget_ledger"
	SnapshotStrategyExpenseLedger SnapshotStrategy = "expense_ledger"
	SnapshotStrategyScopeProgress SnapshotStrategy = "scope_progress"
)

var AllSnapshotStrategies = []SnapshotStrategy{
	SnapshotStrategyPaymentLedger,
	SnapshotStrategyBudgetLedger,
	SnapshotStrategyExpenseLedger,
	SnapshotStrategyScopeProgress,
}

func ParseSnapshotStrategy(s string) (SnapshotStrategy, error) {
	strategy := SnapshotStrategy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSnapshotStrategies {
		if strategy == known {
			return strategy, nil
		}
	}
	return "", fmt.Errorf("invalid snapshot strategy %q", s)
}

// MyDate is a calendar date serialized as YYYY-MM-DD.
type MyDate time.Time

func NewMyDate(year int, month time.Month, day int) MyDate {
	return MyDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (t MyDate) Time() time.Time {
	return time.Time(t)
}

func (t MyDate) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t MyDate) String() string {
	return time.Time(t).Format(utils.DateLayout)
}

func (t MyDate) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// accepts "2006-01-02" or RFC3339 date-times; the time part is dropped
func (t *MyDate) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("date must be string")
	}
	str = strings.TrimSpace(str)
	if str == "" {
		*t = MyDate(time.Time{})
		return nil
	}
	parsed, err := time.Parse(utils.DateLayout, str)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return errors.New("error parsing date")
		}
	}
	*t = NewMyDate(parsed.Year(), parsed.Month(), parsed.Day())
	return nil
}

// Value implements the driver.Valuer interface
func (t MyDate) Value() (driver.Value, error) {
	d := time.Time(t)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Scan implements the sql.Scanner interface
func (t *MyDate) Scan(value interface{}) error {
	if value == nil {
		*t = MyDate(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*t = NewMyDate(v.Year(), v.Month(), v.Day())
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	default:
		return fmt.Errorf("cannot convert %T to MyDate", value)
	}
	return nil
}

func (t *MyDate) scanString(s string) error {
	if len(s) < len(utils.DateLayout) {
		return fmt.Errorf("cannot convert %q to MyDate", s)
	}
	parsed, err := time.Parse(utils.DateLayout, s[:len(utils.DateLayout)])
	if err != nil {
		return err
	}
	*t = MyDate(parsed)
	return nil
}
