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

const clockLayout = "15:04"

// Attendance is a worker's day on site. ProjectId is nil for office days and for
// rows whose project was deleted.
type Attendance struct {
	ID         int             `gorm:"primary_key" json:"id"`
	WorkerName string          `gorm:"size:255;index;not null" json:"worker_name"`
	Role       string          `gorm:"size:100" json:"role"`
	ProjectId  *int            `gorm:"index" json:"project_id"`
	Date       MyDate          `gorm:"type:date;index;not null" json:"date"`
	Hours      decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"hours"`
	TimeIn     *string         `gorm:"size:5" json:"time_in"`
	TimeOut    *string         `gorm:"size:5" json:"time_out"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAttendance struct {
	WorkerName string           `json:"worker_name" binding:"required,max=255"`
	Role       string           `json:"role" binding:"max=100"`
	ProjectId  *int             `json:"project_id"`
	Date       MyDate           `json:"date"`
	Hours      *decimal.Decimal `json:"hours"`
	TimeIn     *string          `json:"time_in"`
	TimeOut    *string          `json:"time_out"`
}

// hoursBetween returns the clock difference; a time out earlier than time in is an overnight shift.
func hoursBetween(timeIn string, timeOut string) (decimal.Decimal, error) {
	in, err := time.Parse(clockLayout, strings.TrimSpace(timeIn))
	if err != nil {
		return decimal.Zero, utils.NewValidationError("TimeIn", "HH:MM")
	}
	out, err := time.Parse(clockLayout, strings.TrimSpace(timeOut))
	if err != nil {
		return decimal.Zero, utils.NewValidationError("TimeOut", "HH:MM")
	}
	diff := out.Sub(in)
	if diff < 0 {
		diff += 24 * time.Hour
	}
	return decimal.NewFromInt(int64(diff / time.Minute)).Div(decimal.NewFromInt(60)).Round(2), nil
}

// resolveHours takes explicit hours first, then time in/out, else zero.
func (input *NewAttendance) resolveHours() (decimal.Decimal, error) {
	if input.Hours != nil {
		if input.Hours.IsNegative() {
			return decimal.Zero, utils.NewValidationError("Hours", "gte=0")
		}
		return input.Hours.Round(2), nil
	}
	if input.TimeIn != nil && input.TimeOut != nil {
		return hoursBetween(*input.TimeIn, *input.TimeOut)
	}
	return decimal.Zero, nil
}

func CreateAttendance(ctx context.Context, input *NewAttendance) (*Attendance, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.WorkerName) == "" {
		return nil, utils.NewValidationError("WorkerName", "required")
	}
	if input.Date.IsZero() {
		return nil, utils.NewValidationError("Date", "required")
	}
	hours, err := input.resolveHours()
	if err != nil {
		return nil, err
	}

	attendance := Attendance{
		WorkerName: strings.TrimSpace(input.WorkerName),
		Role:       input.Role,
		ProjectId:  input.ProjectId,
		Date:       input.Date,
		Hours:      hours,
		TimeIn:     input.TimeIn,
		TimeOut:    input.TimeOut,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if attendance.ProjectId != nil {
			if err := ensureProjectExists(tx, *attendance.ProjectId); err != nil {
				return err
			}
		}
		return tx.Create(&attendance).Error
	})
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func DeleteAttendance(ctx context.Context, id int) (*Attendance, error) {
	db := config.GetDB()
	var attendance Attendance
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&attendance, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("attendance %d: %w", id, utils.ErrorRecordNotFound)
			}
			return err
		}
		return tx.Delete(&attendance).Error
	})
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

// GetAttendances lists attendance ordered by date; worker matches case and space insensitively.
func GetAttendances(ctx context.Context, worker *string, fromDate *time.Time, toDate *time.Time) ([]*Attendance, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if worker != nil && utils.NormalizeWorkerName(*worker) != "" {
		dbCtx = dbCtx.Where("LOWER(TRIM(worker_name)) = ?", utils.NormalizeWorkerName(*worker))
	}
	if fromDate != nil {
		dbCtx = dbCtx.Where("date >= ?", MyDate(utils.StartOfDay(*fromDate)))
	}
	if toDate != nil {
		dbCtx = dbCtx.Where("date <= ?", MyDate(utils.StartOfDay(*toDate)))
	}
	var results []*Attendance
	if err := dbCtx.Order("date, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func getAllAttendances(tx *gorm.DB) ([]Attendance, error) {
	var results []Attendance
	if err := tx.Order("date, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func getAttendancesBetween(tx *gorm.DB, start MyDate, end MyDate) ([]Attendance, error) {
	var results []Attendance
	err := tx.Where("date >= ? AND date <= ?", start, end).Order("date, id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
