package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/utils"
)

func TestPaymentsRecomputeProjectSnapshot(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	project := createProject(t, ctx, "Bahay Kubo", "100000")

	first, err := models.CreatePayment(ctx, project.ID, &models.NewPayment{Amount: dec("4000"), DatePaid: models.NewMyDate(2024, time.January, 10)})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if _, err := models.CreatePayment(ctx, project.ID, &models.NewPayment{Amount: dec("6000"), DatePaid: models.NewMyDate(2024, time.February, 3)}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	got := mustGetProject(t, ctx, project.ID)
	if !got.TotalClientPayment.Equal(dec("10000")) || !got.RemainingBalance.Equal(dec("90000")) {
		t.Fatalf("expected paid 10000 / remaining 90000, got %s / %s", got.TotalClientPayment, got.RemainingBalance)
	}
	if got.LastPaidDate == nil || got.LastPaidDate.String() != "2024-02-03" {
		t.Fatalf("expected last paid 2024-02-03, got %v", got.LastPaidDate)
	}

	if _, err := models.UpdatePayment(ctx, first.ID, &models.NewPayment{Amount: dec("5000"), DatePaid: models.NewMyDate(2024, time.March, 1)}); err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	got = mustGetProject(t, ctx, project.ID)
	if !got.TotalClientPayment.Equal(dec("11000")) || got.LastPaidDate.String() != "2024-03-01" {
		t.Fatalf("after update expected 11000 paid on 2024-03-01, got %s on %v", got.TotalClientPayment, got.LastPaidDate)
	}

	if _, err := models.DeletePayment(ctx, first.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	got = mustGetProject(t, ctx, project.ID)
	if !got.TotalClientPayment.Equal(dec("6000")) || !got.RemainingBalance.Equal(dec("94000")) {
		t.Fatalf("after delete expected 6000 / 94000, got %s / %s", got.TotalClientPayment, got.RemainingBalance)
	}

	histories, err := models.GetHistories(ctx, "projects", project.ID)
	if err != nil {
		t.Fatalf("GetHistories: %v", err)
	}
	if len(histories) != 4 {
		t.Fatalf("expected 4 recompute history rows, got %d", len(histories))
	}
	if histories[0].ActionType != "RECOMPUTE" || histories[0].UserName != "Tester" || histories[0].CorrelationId != "test-correlation" {
		t.Fatalf("unexpected history row %+v", histories[0])
	}
}

func TestLedgerMutationOnMissingProjectIsNotFound(t *testing.T) {
	setupDB(t)
	ctx := testContext()

	_, err := models.CreatePayment(ctx, 404, &models.NewPayment{Amount: dec("1"), DatePaid: models.NewMyDate(2024, time.January, 1)})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := models.RecomputeProject(ctx, 404, models.SnapshotStrategyPaymentLedger); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found from recompute, got %v", err)
	}
	if _, err := models.DeleteExpense(ctx, 12); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found for missing expense, got %v", err)
	}
	if _, err := models.GetOrCreateDesignBudget(ctx, 404); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found for design budget of missing project, got %v", err)
	}
}

func TestPaymentValidation(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	project := createProject(t, ctx, "Validation", "100")

	cases := []struct {
		input *models.NewPayment
		field string
	}{
		{&models.NewPayment{Amount: dec("0"), DatePaid: models.NewMyDate(2024, time.January, 1)}, "Amount"},
		{&models.NewPayment{Amount: dec("-5"), DatePaid: models.NewMyDate(2024, time.January, 1)}, "Amount"},
		{&models.NewPayment{Amount: dec("5")}, "DatePaid"},
	}
	for _, tc := range cases {
		_, err := models.CreatePayment(ctx, project.ID, tc.input)
		var verr *utils.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := verr.Fields[tc.field]; !ok {
			t.Fatalf("expected %s to fail, got %v", tc.field, verr.Fields)
		}
	}
}

func TestDesignBudgetDownpaymentBaselineAndApproval(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	t.Setenv("DESIGN_DOWNPAYMENT_PROGRESS_BASELINE", "20")
	t.Setenv("POST_DESIGN_PHASE", "")
	project := createProject(t, ctx, "Design First", "0")

	lazy, err := models.GetOrCreateDesignBudget(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetOrCreateDesignBudget: %v", err)
	}
	if lazy.Progress != 0 || lazy.ApprovalStatus != models.DesignApprovalStatusPending || !lazy.Downpayment.IsZero() {
		t.Fatalf("expected zero-valued pending budget, got %+v", lazy)
	}

	budget, err := models.UpdateDesignBudget(ctx, project.ID, &models.NewDesignBudget{
		ContractAmount: dec("60000"),
		Downpayment:    dec("5000"),
		TotalReceived:  dec("5000"),
		Progress:       10,
	})
	if err != nil {
		t.Fatalf("UpdateDesignBudget: %v", err)
	}
	if budget.Progress != 20 {
		t.Fatalf("expected progress raised to 20, got %d", budget.Progress)
	}
	got := mustGetProject(t, ctx, project.ID)
	if !got.ContractAmount.Equal(dec("60000")) || !got.DesignFee.Equal(dec("60000")) {
		t.Fatalf("expected contract and design fee 60000, got %s / %s", got.ContractAmount, got.DesignFee)
	}
	if !got.RemainingBalance.Equal(dec("55000")) || got.OverallProgress != 20 {
		t.Fatalf("expected remaining 55000 and progress 20, got %s / %d", got.RemainingBalance, got.OverallProgress)
	}
	if got.Phase != "" {
		t.Fatalf("phase must not change before approval, got %q", got.Phase)
	}

	// downpayment already positive: requested progress is kept as is
	budget, err = models.UpdateDesignBudget(ctx, project.ID, &models.NewDesignBudget{
		ContractAmount: dec("60000"),
		Downpayment:    dec("8000"),
		TotalReceived:  dec("8000"),
		Progress:       15,
		ApprovalStatus: models.DesignApprovalStatusApproved,
	})
	if err != nil {
		t.Fatalf("UpdateDesignBudget: %v", err)
	}
	if budget.Progress != 15 {
		t.Fatalf("expected progress 15, got %d", budget.Progress)
	}
	got = mustGetProject(t, ctx, project.ID)
	if got.Phase != "FOR_BUILD" {
		t.Fatalf("expected phase FOR_BUILD after approval, got %q", got.Phase)
	}
	if got.OverallProgress != 15 {
		t.Fatalf("expected overall progress 15, got %d", got.OverallProgress)
	}
}

func TestBuildBudgetAndExpensesFeedSnapshot(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	project := createProject(t, ctx, "Build", "0")

	if _, err := models.UpdateDesignBudget(ctx, project.ID, &models.NewDesignBudget{ContractAmount: dec("50000"), TotalReceived: dec("50000"), Progress: 100}); err != nil {
		t.Fatalf("UpdateDesignBudget: %v", err)
	}
	expense, err := models.CreateExpense(ctx, project.ID, &models.NewExpense{Category: "materials", Amount: dec("1500.25"), ExpenseDate: models.NewMyDate(2024, time.May, 2)})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	got := mustGetProject(t, ctx, project.ID)
	if !got.ConstructionCost.Equal(dec("1500.25")) || !got.ContractAmount.Equal(dec("50000")) {
		t.Fatalf("expected cost 1500.25 with contract kept, got %s / %s", got.ConstructionCost, got.ContractAmount)
	}

	if _, err := models.UpdateBuildBudget(ctx, project.ID, &models.NewBuildBudget{ContractAmount: dec("200000"), TotalClientPayment: dec("50000")}); err != nil {
		t.Fatalf("UpdateBuildBudget: %v", err)
	}
	got = mustGetProject(t, ctx, project.ID)
	if !got.ContractAmount.Equal(dec("250000")) || !got.TotalClientPayment.Equal(dec("100000")) {
		t.Fatalf("expected 250000 / 100000, got %s / %s", got.ContractAmount, got.TotalClientPayment)
	}
	if !got.RemainingBalance.Equal(dec("150000")) || got.OverallProgress != 63 {
		t.Fatalf("expected remaining 150000 and progress 63, got %s / %d", got.RemainingBalance, got.OverallProgress)
	}

	if _, err := models.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	got = mustGetProject(t, ctx, project.ID)
	if !got.ConstructionCost.IsZero() {
		t.Fatalf("expected construction cost 0, got %s", got.ConstructionCost)
	}
}

func TestScopesDriveOverallProgress(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	project := createProject(t, ctx, "Scopes", "1000")

	var ids []int
	for _, p := range []string{"50", "70", "90"} {
		scope, err := models.CreateProjectScope(ctx, project.ID, &models.NewProjectScope{Name: "scope " + p, ProgressPercent: dec(p)})
		if err != nil {
			t.Fatalf("CreateProjectScope: %v", err)
		}
		ids = append(ids, scope.ID)
	}
	if got := mustGetProject(t, ctx, project.ID); got.OverallProgress != 70 {
		t.Fatalf("expected progress 70, got %d", got.OverallProgress)
	}

	scope, err := models.UpdateProjectScope(ctx, ids[0], &models.NewProjectScope{Name: "scope 50", ProgressPercent: dec("180")})
	if err != nil {
		t.Fatalf("UpdateProjectScope: %v", err)
	}
	if !scope.ProgressPercent.Equal(dec("100")) {
		t.Fatalf("expected progress clamped to 100, got %s", scope.ProgressPercent)
	}
	if got := mustGetProject(t, ctx, project.ID); got.OverallProgress != 87 {
		t.Fatalf("expected progress 87, got %d", got.OverallProgress)
	}

	for _, id := range ids {
		if _, err := models.DeleteProjectScope(ctx, id); err != nil {
			t.Fatalf("DeleteProjectScope: %v", err)
		}
	}
	if got := mustGetProject(t, ctx, project.ID); got.OverallProgress != 0 {
		t.Fatalf("expected progress 0 without scopes, got %d", got.OverallProgress)
	}
}

func TestPhaseSkippedWithoutPhaseColumn(t *testing.T) {
	db := setupDB(t)
	ctx := testContext()
	project := createProject(t, ctx, "Legacy", "0")

	if err := db.Migrator().DropColumn(&models.Project{}, "phase"); err != nil {
		t.Fatalf("DropColumn: %v", err)
	}
	_, err := models.UpdateDesignBudget(ctx, project.ID, &models.NewDesignBudget{
		ContractAmount: dec("100"),
		ApprovalStatus: models.DesignApprovalStatusApproved,
	})
	if err != nil {
		t.Fatalf("UpdateDesignBudget without phase column: %v", err)
	}
	var contract []string
	if err := config.GetDB().Model(&models.Project{}).Where("id = ?", project.ID).Pluck("contract_amount", &contract).Error; err != nil {
		t.Fatalf("read contract: %v", err)
	}
	if len(contract) != 1 || !dec(contract[0]).Equal(dec("100")) {
		t.Fatalf("expected contract 100, got %v", contract)
	}
}

func TestDeleteProjectRemovesLedgersAndDetachesAttendance(t *testing.T) {
	db := setupDB(t)
	ctx := testContext()
	project := createProject(t, ctx, "Doomed", "100")

	if _, err := models.CreatePayment(ctx, project.ID, &models.NewPayment{Amount: dec("10"), DatePaid: models.NewMyDate(2024, time.January, 1)}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if _, err := models.GetOrCreateBuildBudget(ctx, project.ID); err != nil {
		t.Fatalf("GetOrCreateBuildBudget: %v", err)
	}
	attendance, err := models.CreateAttendance(ctx, &models.NewAttendance{WorkerName: "Juan", ProjectId: &project.ID, Date: models.NewMyDate(2024, time.January, 2)})
	if err != nil {
		t.Fatalf("CreateAttendance: %v", err)
	}

	if _, err := models.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := models.GetProject(ctx, project.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected project gone, got %v", err)
	}
	var payments, budgets int64
	db.Model(&models.Payment{}).Count(&payments)
	db.Model(&models.BuildBudget{}).Count(&budgets)
	if payments != 0 || budgets != 0 {
		t.Fatalf("expected ledgers removed, got %d payments / %d budgets", payments, budgets)
	}
	var kept models.Attendance
	if err := db.First(&kept, attendance.ID).Error; err != nil {
		t.Fatalf("attendance should survive: %v", err)
	}
	if kept.ProjectId != nil {
		t.Fatalf("expected attendance detached, got project %d", *kept.ProjectId)
	}
}
