package reports

import (
	"fmt"
	"io"

	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	profitabilitySheet = "Profitability"
	allocationSheet    = "Payroll Allocation"
)

var profitabilityHeadings = []string{
	"Project", "Code", "Contract Amount", "Collected", "Remaining Balance",
	"Expenses", "Allocated Payroll", "Total Cost",
	"Profit (Collected)", "Profit (Contract)", "Margin % (Collected)", "Margin % (Contract)",
	"Scope Contract Total", "Computed Amount To Date", "Weighted Progress %", "Overall Progress %",
}

var allocationHeadings = []string{"Payroll ID", "Worker", "Net", "Project ID", "Hours", "Amount", "Unallocated", "Reason"}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// optional cells stay empty when the margin is undefined
func optionalPercent(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}

func setRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func setHeadings(f *excelize.File, sheet string, headings []string, style int) error {
	values := make([]interface{}, len(headings))
	for i, h := range headings {
		values[i] = h
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headings), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// WriteProjectProfitabilityWorkbook renders the report, with its summary row and the per-payroll
// allocation breakdown, as an xlsx workbook.
func WriteProjectProfitabilityWorkbook(report *ProjectProfitabilityReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", profitabilitySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(allocationSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := setHeadings(f, profitabilitySheet, profitabilityHeadings, bold); err != nil {
		return err
	}
	rowNo := 2
	for _, p := range report.Projects {
		values := []interface{}{
			p.ProjectName, p.ProjectCode, money(p.ContractAmount), money(p.CollectedAmount), money(p.RemainingBalance),
			money(p.ExpenseTotal), money(p.AllocatedPayrollTotal), money(p.TotalCost),
			money(p.ProfitCollectedBasis), money(p.ProfitContractBasis),
			optionalPercent(p.MarginCollectedPercent), optionalPercent(p.MarginContractPercent),
			money(p.ScopeContractTotal), money(p.ComputedAmountToDate),
			p.WeightedProgressPercent.InexactFloat64(), p.OverallProgress,
		}
		if err := setRow(f, profitabilitySheet, rowNo, values); err != nil {
			return err
		}
		rowNo++
	}

	s := report.Summary
	summary := []interface{}{
		"Total", "", money(s.ContractAmount), money(s.CollectedAmount), money(s.RemainingBalance),
		money(s.ExpenseTotal), money(s.AllocatedPayrollTotal), money(s.TotalCost),
		money(s.ProfitCollectedBasis), money(s.ProfitContractBasis),
		optionalPercent(s.MarginCollectedPercent), optionalPercent(s.MarginContractPercent),
		money(s.ScopeContractTotal), money(s.ComputedAmountToDate),
		s.WeightedProgressPercent.InexactFloat64(), s.OverallProgress,
	}
	if err := setRow(f, profitabilitySheet, rowNo, summary); err != nil {
		return err
	}
	if err := setRow(f, profitabilitySheet, rowNo+1, []interface{}{"Unallocated Payroll", "", money(s.UnallocatedPayrollTotal)}); err != nil {
		return err
	}
	if err := f.SetCellStyle(profitabilitySheet, fmt.Sprintf("A%d", rowNo), fmt.Sprintf("A%d", rowNo+1), bold); err != nil {
		return err
	}

	if report.Allocation != nil {
		if err := writeAllocationSheet(f, report.Allocation, bold); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeAllocationSheet(f *excelize.File, allocation *models.PayrollAllocation, headingStyle int) error {
	if err := setHeadings(f, allocationSheet, allocationHeadings, headingStyle); err != nil {
		return err
	}
	rowNo := 2
	for _, row := range allocation.Rows {
		if len(row.Projects) == 0 {
			values := []interface{}{row.PayrollId, row.WorkerName, money(row.Net), nil, nil, nil, money(row.Unallocated), row.Reason}
			if err := setRow(f, allocationSheet, rowNo, values); err != nil {
				return err
			}
			rowNo++
			continue
		}
		for _, p := range row.Projects {
			values := []interface{}{row.PayrollId, row.WorkerName, money(row.Net), p.ProjectId, p.Hours.InexactFloat64(), money(p.Amount), nil, ""}
			if err := setRow(f, allocationSheet, rowNo, values); err != nil {
				return err
			}
			rowNo++
		}
	}
	return nil
}
