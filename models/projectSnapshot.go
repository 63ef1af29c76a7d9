package models

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("sitebooks_backend/models")

// SnapshotInputs is everything a recompute may read. Only the sets the chosen
// strategy needs have to be filled.
type SnapshotInputs struct {
	Project        Project
	Payments       []Payment
	DesignBudget   *DesignBudget
	BuildBudget    *BuildBudget
	ExpenseAmounts []decimal.Decimal
	Scopes         []ProjectScope
}

// ProjectSnapshot is the derived part of a Project row.
type ProjectSnapshot struct {
	ContractAmount     decimal.Decimal `json:"contract_amount"`
	DesignFee          decimal.Decimal `json:"design_fee"`
	ConstructionCost   decimal.Decimal `json:"construction_cost"`
	TotalClientPayment decimal.Decimal `json:"total_client_payment"`
	RemainingBalance   decimal.Decimal `json:"remaining_balance"`
	LastPaidDate       *MyDate         `json:"last_paid_date"`
	OverallProgress    int             `json:"overall_progress"`
}

func snapshotOf(p Project) ProjectSnapshot {
	return ProjectSnapshot{
		ContractAmount:     p.ContractAmount,
		DesignFee:          p.DesignFee,
		ConstructionCost:   p.ConstructionCost,
		TotalClientPayment: p.TotalClientPayment,
		RemainingBalance:   p.RemainingBalance,
		LastPaidDate:       p.LastPaidDate,
		OverallProgress:    p.OverallProgress,
	}
}

func (s ProjectSnapshot) ApplyTo(p *Project) {
	p.ContractAmount = s.ContractAmount
	p.DesignFee = s.DesignFee
	p.ConstructionCost = s.ConstructionCost
	p.TotalClientPayment = s.TotalClientPayment
	p.RemainingBalance = s.RemainingBalance
	p.LastPaidDate = s.LastPaidDate
	p.OverallProgress = s.OverallProgress
}

// ComputeProjectSnapshot is the pure recompute. Fields the strategy does not own are carried
// over from in.Project unchanged.
//
// The payment and budget strategies both write total_client_payment, and the budget and scope
// strategies both write overall_progress, with different formulas. Whichever ran last wins.
func ComputeProjectSnapshot(strategy SnapshotStrategy, in SnapshotInputs) (ProjectSnapshot, error) {
	s := snapshotOf(in.Project)

	switch strategy {
	case SnapshotStrategyPaymentLedger:
		total := decimal.Zero
		var lastPaid *MyDate
		for i := range in.Payments {
			total = total.Add(in.Payments[i].Amount)
			d := in.Payments[i].DatePaid
			if lastPaid == nil || d.Time().After(lastPaid.Time()) {
				lastPaid = &d
			}
		}
		s.TotalClientPayment = total
		s.LastPaidDate = lastPaid
		s.RemainingBalance = s.ContractAmount.Sub(s.TotalClientPayment)

	case SnapshotStrategyBudgetLedger:
		design := utils.DereferencePtr(in.DesignBudget)
		build := utils.DereferencePtr(in.BuildBudget)
		constructionCost := utils.SumDecimals(in.ExpenseAmounts)

		s.ContractAmount = design.ContractAmount.Add(build.ContractAmount)
		s.DesignFee = design.ContractAmount
		s.ConstructionCost = constructionCost
		s.TotalClientPayment = design.TotalReceived.Add(build.TotalClientPayment)
		s.RemainingBalance = s.ContractAmount.Sub(s.TotalClientPayment)
		s.OverallProgress = BudgetOverallProgress(design, build, constructionCost)

	case SnapshotStrategyExpenseLedger:
		s.ConstructionCost = utils.SumDecimals(in.ExpenseAmounts)

	case SnapshotStrategyScopeProgress:
		s.OverallProgress = ScopeOverallProgress(in.Scopes)

	default:
		return s, fmt.Errorf("invalid snapshot strategy %q", strategy)
	}

	return s, nil
}

// BuildProgress is collected build payments over the build contract, in percent (0 without a contract).
func BuildProgress(build BuildBudget) decimal.Decimal {
	if build.ContractAmount.IsZero() {
		return decimal.Zero
	}
	return build.TotalClientPayment.Div(build.ContractAmount).Mul(utils.DecimalOneHundred)
}

func BudgetOverallProgress(design DesignBudget, build BuildBudget, constructionCost decimal.Decimal) int {
	designProgress := decimal.NewFromInt(int64(design.Progress))
	hasBuildData := build.ContractAmount.IsPositive() ||
		build.TotalClientPayment.IsPositive() ||
		constructionCost.IsPositive()
	if !hasBuildData {
		return utils.ClampPercent(designProgress)
	}
	avg := designProgress.Add(BuildProgress(build)).Div(decimal.NewFromInt(2))
	return utils.ClampPercent(avg)
}

// ScopeOverallProgress is the plain average of scope progress, 0 without scopes.
func ScopeOverallProgress(scopes []ProjectScope) int {
	if len(scopes) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, scope := range scopes {
		total = total.Add(scope.ProgressPercent)
	}
	return utils.ClampPercent(total.Div(decimal.NewFromInt(int64(len(scopes)))))
}

func loadSnapshotInputs(tx *gorm.DB, project *Project, strategy SnapshotStrategy) (SnapshotInputs, error) {
	in := SnapshotInputs{Project: *project}

	switch strategy {
	case SnapshotStrategyPaymentLedger:
		if err := tx.Where("project_id = ?", project.ID).Order("id").Find(&in.Payments).Error; err != nil {
			return in, err
		}
	case SnapshotStrategyBudgetLedger:
		design, err := findDesignBudget(tx, project.ID)
		if err != nil {
			return in, err
		}
		build, err := findBuildBudget(tx, project.ID)
		if err != nil {
			return in, err
		}
		in.DesignBudget = design
		in.BuildBudget = build
		if in.ExpenseAmounts, err = expenseAmounts(tx, project.ID); err != nil {
			return in, err
		}
	case SnapshotStrategyExpenseLedger:
		var err error
		if in.ExpenseAmounts, err = expenseAmounts(tx, project.ID); err != nil {
			return in, err
		}
	case SnapshotStrategyScopeProgress:
		if err := tx.Where("project_id = ?", project.ID).Order("id").Find(&in.Scopes).Error; err != nil {
			return in, err
		}
	}
	return in, nil
}

// RecomputeProjectSnapshot reads the sub-ledger family named by strategy, recomputes the
// project's snapshot and writes it back, all inside tx. The project row stays locked
// until tx ends. A missing project is reported as utils.ErrorRecordNotFound.
func RecomputeProjectSnapshot(ctx context.Context, tx *gorm.DB, projectId int, strategy SnapshotStrategy) (*Project, error) {
	ctx, span := tracer.Start(ctx, "RecomputeProjectSnapshot")
	defer span.End()
	span.SetAttributes(
		attribute.Int("project.id", projectId),
		attribute.String("snapshot.strategy", string(strategy)),
	)

	tx = tx.WithContext(ctx)
	project, err := lockProjectForChange(tx, projectId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	in, err := loadSnapshotInputs(tx, project, strategy)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	before := snapshotOf(*project)
	after, err := ComputeProjectSnapshot(strategy, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	after.ApplyTo(project)

	err = tx.Model(project).Select(
		"contract_amount", "design_fee", "construction_cost", "total_client_payment",
		"remaining_balance", "last_paid_date", "overall_progress",
	).Updates(project).Error
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := SaveHistoryRecompute(tx, project.ID, before, after, strategy); err != nil {
		return nil, err
	}
	return project, nil
}

// RecomputeProject runs one strategy in its own transaction (manual trigger, cli tooling).
func RecomputeProject(ctx context.Context, projectId int, strategy SnapshotStrategy) (*Project, error) {
	release := lockProject(ctx, projectId, "RecomputeProject")
	defer release()

	db := config.GetDB()
	var project *Project
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = RecomputeProjectSnapshot(ctx, tx, projectId, strategy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}
