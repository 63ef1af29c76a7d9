package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("sitebooks_backend/models/reports")

type ProjectProfitability struct {
	ProjectId               int              `json:"project_id"`
	ProjectName             string           `json:"project_name"`
	ProjectCode             string           `json:"project_code"`
	ContractAmount          decimal.Decimal  `json:"contract_amount"`
	CollectedAmount         decimal.Decimal  `json:"collected_amount"`
	RemainingBalance        decimal.Decimal  `json:"remaining_balance"`
	ExpenseTotal            decimal.Decimal  `json:"expense_total"`
	AllocatedPayrollTotal   decimal.Decimal  `json:"allocated_payroll_total"`
	TotalCost               decimal.Decimal  `json:"total_cost"`
	ProfitCollectedBasis    decimal.Decimal  `json:"profit_collected_basis"`
	ProfitContractBasis     decimal.Decimal  `json:"profit_contract_basis"`
	MarginCollectedPercent  *decimal.Decimal `json:"margin_collected_percent"`
	MarginContractPercent   *decimal.Decimal `json:"margin_contract_percent"`
	ScopeContractTotal      decimal.Decimal  `json:"scope_contract_total"`
	ComputedAmountToDate    decimal.Decimal  `json:"computed_amount_to_date"`
	WeightedProgressPercent decimal.Decimal  `json:"weighted_progress_percent"`
	OverallProgress         int              `json:"overall_progress"`
}

type ProjectProfitabilitySummary struct {
	ContractAmount          decimal.Decimal  `json:"contract_amount"`
	CollectedAmount         decimal.Decimal  `json:"collected_amount"`
	RemainingBalance        decimal.Decimal  `json:"remaining_balance"`
	ExpenseTotal            decimal.Decimal  `json:"expense_total"`
	AllocatedPayrollTotal   decimal.Decimal  `json:"allocated_payroll_total"`
	TotalCost               decimal.Decimal  `json:"total_cost"`
	ProfitCollectedBasis    decimal.Decimal  `json:"profit_collected_basis"`
	ProfitContractBasis     decimal.Decimal  `json:"profit_contract_basis"`
	MarginCollectedPercent  *decimal.Decimal `json:"margin_collected_percent"`
	MarginContractPercent   *decimal.Decimal `json:"margin_contract_percent"`
	ScopeContractTotal      decimal.Decimal  `json:"scope_contract_total"`
	ComputedAmountToDate    decimal.Decimal  `json:"computed_amount_to_date"`
	WeightedProgressPercent decimal.Decimal  `json:"weighted_progress_percent"`
	OverallProgress         int              `json:"overall_progress"`
	UnallocatedPayrollTotal decimal.Decimal  `json:"unallocated_payroll_total"`
}

type ProjectProfitabilityReport struct {
	Projects    []ProjectProfitability      `json:"projects"`
	Summary     ProjectProfitabilitySummary `json:"summary"`
	Allocation  *models.PayrollAllocation   `json:"-"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

type scopeTotals struct {
	contractTotal    decimal.Decimal
	amountToDate     decimal.Decimal
	weightedProgress decimal.Decimal
}

func sumScopes(scopes []models.ProjectScope) map[int]*scopeTotals {
	totals := make(map[int]*scopeTotals)
	for _, s := range scopes {
		t, ok := totals[s.ProjectId]
		if !ok {
			t = &scopeTotals{}
			totals[s.ProjectId] = t
		}
		t.contractTotal = t.contractTotal.Add(s.ContractAmount)
		t.amountToDate = t.amountToDate.Add(s.ContractAmount.Mul(s.ProgressPercent).Div(utils.DecimalOneHundred))
		t.weightedProgress = t.weightedProgress.Add(s.WeightPercent.Mul(s.ProgressPercent).Div(utils.DecimalOneHundred))
	}
	return totals
}

// margin is profit over base in percent to one decimal, nil when base is zero
func margin(profit decimal.Decimal, base decimal.Decimal) *decimal.Decimal {
	return utils.PercentOf(profit, base, 1)
}

// BuildProjectProfitabilityReport joins the project snapshots with expense totals, scope figures and
// the payroll allocation. Projects keep the order they are given in.
func BuildProjectProfitabilityReport(
	projects []*models.Project,
	expenseTotals map[int]decimal.Decimal,
	scopes []models.ProjectScope,
	allocation *models.PayrollAllocation,
) *ProjectProfitabilityReport {
	if allocation == nil {
		allocation = &models.PayrollAllocation{ByProject: map[int]decimal.Decimal{}}
	}
	scopeByProject := sumScopes(scopes)

	report := &ProjectProfitabilityReport{
		Projects:   make([]ProjectProfitability, 0, len(projects)),
		Allocation: allocation,
	}
	summary := &report.Summary

	for _, p := range projects {
		row := ProjectProfitability{
			ProjectId:             p.ID,
			ProjectName:           p.Name,
			ProjectCode:           p.Code,
			ContractAmount:        p.ContractAmount,
			CollectedAmount:       p.TotalClientPayment,
			RemainingBalance:      p.RemainingBalance,
			ExpenseTotal:          expenseTotals[p.ID],
			AllocatedPayrollTotal: allocation.ProjectTotal(p.ID),
			OverallProgress:       p.OverallProgress,
		}
		row.TotalCost = row.ExpenseTotal.Add(row.AllocatedPayrollTotal)
		row.ProfitCollectedBasis = row.CollectedAmount.Sub(row.TotalCost)
		row.ProfitContractBasis = row.ContractAmount.Sub(row.TotalCost)
		row.MarginCollectedPercent = margin(row.ProfitCollectedBasis, row.CollectedAmount)
		row.MarginContractPercent = margin(row.ProfitContractBasis, row.ContractAmount)
		if st, ok := scopeByProject[p.ID]; ok {
			row.ScopeContractTotal = st.contractTotal
			row.ComputedAmountToDate = utils.RoundMoney(st.amountToDate)
			row.WeightedProgressPercent = st.weightedProgress.Round(2)
		}

		summary.ContractAmount = summary.ContractAmount.Add(row.ContractAmount)
		summary.CollectedAmount = summary.CollectedAmount.Add(row.CollectedAmount)
		summary.RemainingBalance = summary.RemainingBalance.Add(row.RemainingBalance)
		summary.ExpenseTotal = summary.ExpenseTotal.Add(row.ExpenseTotal)
		summary.AllocatedPayrollTotal = summary.AllocatedPayrollTotal.Add(row.AllocatedPayrollTotal)
		summary.TotalCost = summary.TotalCost.Add(row.TotalCost)
		summary.ProfitCollectedBasis = summary.ProfitCollectedBasis.Add(row.ProfitCollectedBasis)
		summary.ProfitContractBasis = summary.ProfitContractBasis.Add(row.ProfitContractBasis)
		summary.ScopeContractTotal = summary.ScopeContractTotal.Add(row.ScopeContractTotal)
		summary.ComputedAmountToDate = summary.ComputedAmountToDate.Add(row.ComputedAmountToDate)
		// progress columns are summed like the money columns, not averaged
		summary.WeightedProgressPercent = summary.WeightedProgressPercent.Add(row.WeightedProgressPercent)
		summary.OverallProgress += row.OverallProgress

		report.Projects = append(report.Projects, row)
	}

	summary.UnallocatedPayrollTotal = allocation.Unallocated
	summary.MarginCollectedPercent = margin(summary.ProfitCollectedBasis, summary.CollectedAmount)
	summary.MarginContractPercent = margin(summary.ProfitContractBasis, summary.ContractAmount)
	return report
}

// GetProjectProfitabilityReport reads current data and reruns the payroll allocation every call.
func GetProjectProfitabilityReport(ctx context.Context) (*ProjectProfitabilityReport, error) {
	ctx, span := tracer.Start(ctx, "GetProjectProfitabilityReport")
	defer span.End()
	started := time.Now()

	projects, err := models.GetProjects(ctx, nil)
	if err != nil {
		return nil, err
	}
	expenseTotals, err := models.GetExpenseTotalsByProject(ctx)
	if err != nil {
		return nil, err
	}
	scopes, err := models.GetAllProjectScopes(ctx)
	if err != nil {
		return nil, err
	}
	allocation, err := models.LoadPayrollAllocation(ctx, started)
	if err != nil {
		return nil, err
	}

	report := BuildProjectProfitabilityReport(projects, expenseTotals, scopes, allocation)
	report.GeneratedAt = started
	logSlowReport(ctx, "project_profitability", started, logrus.Fields{"projects": len(projects)})
	return report, nil
}
