package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reasons a payroll row was not spread over projects.
const (
	AllocationSkippedNonPositiveNet = "non_positive_net"
	AllocationUnallocatedNoWorker   = "no_worker_name"
	AllocationUnallocatedNoMatch    = "no_matching_attendance"
	AllocationUnallocatedNoHours    = "no_attendance_hours"
)

type PayrollAllocationInput struct {
	Payrolls    []Payroll
	Cutoffs     map[int]PayrollCutoff
	Attendances []Attendance
	// Now picks the default week for rows with neither cutoff nor week start.
	Now time.Time
}

type ProjectAllocation struct {
	ProjectId int             `json:"project_id"`
	Hours     decimal.Decimal `json:"hours"`
	Amount    decimal.Decimal `json:"amount"`
}

type PayrollRowAllocation struct {
	PayrollId   int                 `json:"payroll_id"`
	WorkerName  string              `json:"worker_name"`
	Net         decimal.Decimal     `json:"net"`
	WindowStart time.Time           `json:"window_start"`
	WindowEnd   time.Time           `json:"window_end"`
	Projects    []ProjectAllocation `json:"projects"`
	Unallocated decimal.Decimal     `json:"unallocated"`
	Reason      string              `json:"reason,omitempty"`
}

type PayrollAllocation struct {
	ByProject    map[int]decimal.Decimal `json:"by_project"`
	ProjectOrder []int                   `json:"project_order"`
	Unallocated  decimal.Decimal         `json:"unallocated"`
	Rows         []PayrollRowAllocation  `json:"rows"`
}

// ProjectTotal is zero for projects that received nothing.
func (a *PayrollAllocation) ProjectTotal(projectId int) decimal.Decimal {
	return a.ByProject[projectId]
}

func (a *PayrollAllocation) addProject(projectId int, amount decimal.Decimal) {
	total, ok := a.ByProject[projectId]
	if !ok {
		a.ProjectOrder = append(a.ProjectOrder, projectId)
	}
	a.ByProject[projectId] = utils.RoundMoney(total.Add(amount))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// allocationWindow is the inclusive day range a payroll row covers.
func allocationWindow(p Payroll, cutoffs map[int]PayrollCutoff, now time.Time) (time.Time, time.Time) {
	if p.CutoffId != nil {
		if cutoff, ok := cutoffs[*p.CutoffId]; ok {
			return dateOnly(cutoff.StartDate.Time()), utils.EndOfDay(dateOnly(cutoff.EndDate.Time()))
		}
	}
	var start time.Time
	if p.WeekStart != nil && !p.WeekStart.IsZero() {
		start = dateOnly(p.WeekStart.Time())
	} else {
		start = dateOnly(utils.StartOfWeek(now))
	}
	return start, utils.EndOfDay(start.AddDate(0, 0, 6))
}

type projectHours struct {
	projectId int
	hours     decimal.Decimal
}

// groupProjectHours sums hours per project in the order projects are first seen.
func groupProjectHours(candidates []Attendance) []projectHours {
	var grouped []projectHours
	index := make(map[int]int)
	for _, a := range candidates {
		pid := *a.ProjectId
		i, ok := index[pid]
		if !ok {
			i = len(grouped)
			index[pid] = i
			grouped = append(grouped, projectHours{projectId: pid})
		}
		grouped[i].hours = grouped[i].hours.Add(a.Hours)
	}
	kept := grouped[:0]
	for _, g := range grouped {
		if g.hours.IsPositive() {
			kept = append(kept, g)
		}
	}
	return kept
}

// AllocatePayroll spreads each payroll row's net pay over the projects its worker attended inside
// the row's pay window, in proportion to hours. The last project takes the rounding remainder so
// each row's shares add up to its net exactly. Rows that cannot be matched go to Unallocated.
func AllocatePayroll(in PayrollAllocationInput) *PayrollAllocation {
	result := &PayrollAllocation{
		ByProject:   make(map[int]decimal.Decimal),
		Unallocated: decimal.Zero,
	}

	byWorker := make(map[string][]Attendance)
	for _, a := range in.Attendances {
		if a.ProjectId == nil {
			continue
		}
		key := utils.NormalizeWorkerName(a.WorkerName)
		byWorker[key] = append(byWorker[key], a)
	}

	for _, p := range in.Payrolls {
		net := PayrollNet(p.Gross, p.Deductions)
		row := PayrollRowAllocation{
			PayrollId:   p.ID,
			WorkerName:  p.WorkerName,
			Net:         net,
			Unallocated: decimal.Zero,
		}
		if !net.IsPositive() {
			row.Reason = AllocationSkippedNonPositiveNet
			result.Rows = append(result.Rows, row)
			continue
		}
		unallocated := func(reason string) {
			row.Unallocated = net
			row.Reason = reason
			result.Unallocated = utils.RoundMoney(result.Unallocated.Add(net))
			result.Rows = append(result.Rows, row)
		}

		key := utils.NormalizeWorkerName(p.WorkerName)
		if key == "" {
			unallocated(AllocationUnallocatedNoWorker)
			continue
		}

		row.WindowStart, row.WindowEnd = allocationWindow(p, in.Cutoffs, in.Now)
		var candidates []Attendance
		for _, a := range byWorker[key] {
			d := dateOnly(a.Date.Time())
			if !d.Before(row.WindowStart) && !d.After(row.WindowEnd) {
				candidates = append(candidates, a)
			}
		}
		if len(candidates) == 0 {
			unallocated(AllocationUnallocatedNoMatch)
			continue
		}

		grouped := groupProjectHours(candidates)
		totalHours := decimal.Zero
		for _, g := range grouped {
			totalHours = totalHours.Add(g.hours)
		}
		if !totalHours.IsPositive() {
			unallocated(AllocationUnallocatedNoHours)
			continue
		}

		allocatedSoFar := decimal.Zero
		for i, g := range grouped {
			var amount decimal.Decimal
			if i == len(grouped)-1 {
				amount = net.Sub(allocatedSoFar)
			} else {
				amount = utils.RoundMoney(net.Mul(g.hours.Div(totalHours)))
			}
			allocatedSoFar = allocatedSoFar.Add(amount)
			row.Projects = append(row.Projects, ProjectAllocation{
				ProjectId: g.projectId,
				Hours:     g.hours,
				Amount:    amount,
			})
			result.addProject(g.projectId, amount)
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

func loadPayrollAllocationInput(tx *gorm.DB, now time.Time) (PayrollAllocationInput, error) {
	in := PayrollAllocationInput{Now: now}
	if err := tx.Order("id").Find(&in.Payrolls).Error; err != nil {
		return in, err
	}
	var err error
	if in.Cutoffs, err = getPayrollCutoffMap(tx); err != nil {
		return in, err
	}
	if in.Attendances, err = getAllAttendances(tx); err != nil {
		return in, err
	}
	return in, nil
}

// LoadPayrollAllocation reads every payroll, cutoff and attendance row and allocates from scratch.
func LoadPayrollAllocation(ctx context.Context, now time.Time) (*PayrollAllocation, error) {
	ctx, span := tracer.Start(ctx, "LoadPayrollAllocation")
	defer span.End()

	db := config.GetDB()
	in, err := loadPayrollAllocationInput(db.WithContext(ctx), now)
	if err != nil {
		return nil, err
	}
	return AllocatePayroll(in), nil
}
