package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
)

func TestGeneratePayrollForCutoffAndLock(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	siteA := createProject(t, ctx, "Site A", "0")
	siteB := createProject(t, ctx, "Site B", "0")

	attend := func(worker string, projectId *int, day int, hours string) {
		h := dec(hours)
		_, err := models.CreateAttendance(ctx, &models.NewAttendance{
			WorkerName: worker,
			ProjectId:  projectId,
			Date:       models.NewMyDate(2024, time.January, day),
			Hours:      &h,
		})
		if err != nil {
			t.Fatalf("CreateAttendance: %v", err)
		}
	}
	attend("Juan", &siteA.ID, 2, "8")
	attend("juan ", &siteB.ID, 3, "2")
	attend("Maria", &siteA.ID, 4, "6")
	attend("Maria", nil, 5, "4")
	attend("Juan", &siteA.ID, 9, "8") // after the cutoff

	cutoff, err := models.CreatePayrollCutoff(ctx, &models.NewPayrollCutoff{
		StartDate: models.NewMyDate(2024, time.January, 1),
		EndDate:   models.NewMyDate(2024, time.January, 7),
	})
	if err != nil {
		t.Fatalf("CreatePayrollCutoff: %v", err)
	}

	payrolls, err := models.GeneratePayrollForCutoff(ctx, cutoff.ID, &models.GeneratePayrollInput{
		DefaultRatePerHour: dec("50"),
		Rates:              map[string]decimal.Decimal{"JUAN": dec("100")},
	})
	if err != nil {
		t.Fatalf("GeneratePayrollForCutoff: %v", err)
	}
	if len(payrolls) != 2 {
		t.Fatalf("expected 2 payroll rows, got %d", len(payrolls))
	}
	juan, maria := payrolls[0], payrolls[1]
	if juan.WorkerName != "Juan" || !juan.Hours.Equal(dec("10")) || !juan.Net.Equal(dec("1000")) {
		t.Fatalf("unexpected Juan payroll %+v", juan)
	}
	if !maria.Hours.Equal(dec("10")) || !maria.Gross.Equal(dec("500")) {
		t.Fatalf("unexpected Maria payroll %+v", maria)
	}

	// regenerating replaces pending rows
	if _, err := models.GeneratePayrollForCutoff(ctx, cutoff.ID, &models.GeneratePayrollInput{DefaultRatePerHour: dec("50")}); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	all, err := models.GetPayrolls(ctx, &cutoff.ID, nil)
	if err != nil {
		t.Fatalf("GetPayrolls: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows after regenerate, got %d", len(all))
	}

	allocation, err := models.LoadPayrollAllocation(ctx, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("LoadPayrollAllocation: %v", err)
	}
	// Juan 500 net: 8h A, 2h B; Maria 500 net: 6h A only (office day ignored)
	if !allocation.ProjectTotal(siteA.ID).Equal(dec("900")) || !allocation.ProjectTotal(siteB.ID).Equal(dec("100")) {
		t.Fatalf("unexpected allocation %v", allocation.ByProject)
	}

	if _, err := models.MarkPayrollCutoffPaid(ctx, cutoff.ID); err != nil {
		t.Fatalf("MarkPayrollCutoffPaid: %v", err)
	}
	paid, err := models.GetPayrollCutoff(ctx, cutoff.ID)
	if err != nil {
		t.Fatalf("GetPayrollCutoff: %v", err)
	}
	if paid.Status != models.PayrollCutoffStatusPaid || paid.PaidAt == nil {
		t.Fatalf("expected paid cutoff, got %+v", paid)
	}

	if _, err := models.GeneratePayrollForCutoff(ctx, cutoff.ID, &models.GeneratePayrollInput{}); !errors.Is(err, models.ErrPayrollLocked) {
		t.Fatalf("expected locked on regenerate, got %v", err)
	}
	if _, err := models.UpdatePayroll(ctx, all[0].ID, &models.NewPayroll{WorkerName: "Juan"}); !errors.Is(err, models.ErrPayrollLocked) {
		t.Fatalf("expected locked on update, got %v", err)
	}
	if _, err := models.DeletePayroll(ctx, all[0].ID); !errors.Is(err, models.ErrPayrollLocked) {
		t.Fatalf("expected locked on delete, got %v", err)
	}
	if _, err := models.CreatePayroll(ctx, &models.NewPayroll{WorkerName: "Late", CutoffId: &cutoff.ID}); !errors.Is(err, models.ErrPayrollLocked) {
		t.Fatalf("expected locked on create, got %v", err)
	}
	histories, err := models.GetHistories(ctx, "payroll_cutoffs", cutoff.ID)
	if err != nil {
		t.Fatalf("GetHistories: %v", err)
	}
	if len(histories) != 3 {
		t.Fatalf("expected 3 cutoff history rows, got %d", len(histories))
	}
}

func TestManualPayrollNet(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	weekStart := models.NewMyDate(2024, time.January, 8)

	payroll, err := models.CreatePayroll(ctx, &models.NewPayroll{
		WorkerName:  "  Pedro ",
		Hours:       dec("12.5"),
		RatePerHour: dec("80"),
		Deductions:  dec("100.004"),
		WeekStart:   &weekStart,
	})
	if err != nil {
		t.Fatalf("CreatePayroll: %v", err)
	}
	if payroll.WorkerName != "Pedro" || !payroll.Gross.Equal(dec("1000")) || !payroll.Net.Equal(dec("900")) {
		t.Fatalf("unexpected payroll %+v", payroll)
	}

	gross := dec("2000")
	updated, err := models.UpdatePayroll(ctx, payroll.ID, &models.NewPayroll{WorkerName: "Pedro", Gross: &gross, Deductions: dec("250.50")})
	if err != nil {
		t.Fatalf("UpdatePayroll: %v", err)
	}
	if !updated.Net.Equal(dec("1749.50")) {
		t.Fatalf("expected net 1749.50, got %s", updated.Net)
	}

	if _, err := models.CreatePayroll(ctx, &models.NewPayroll{WorkerName: "X", CutoffId: func() *int { i := 99; return &i }()}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected missing cutoff to be not found, got %v", err)
	}
	if _, err := models.CreatePayroll(ctx, &models.NewPayroll{WorkerName: "X", Deductions: dec("-1")}); err == nil {
		t.Fatalf("expected negative deductions to fail")
	}
}

func TestAttendanceHoursAndFilters(t *testing.T) {
	setupDB(t)
	ctx := testContext()
	in, out := "22:00", "06:30"

	night, err := models.CreateAttendance(ctx, &models.NewAttendance{WorkerName: "Lito", Date: models.NewMyDate(2024, time.June, 3), TimeIn: &in, TimeOut: &out})
	if err != nil {
		t.Fatalf("CreateAttendance: %v", err)
	}
	if !night.Hours.Equal(dec("8.5")) {
		t.Fatalf("expected 8.5 hours overnight, got %s", night.Hours)
	}
	if _, err := models.CreateAttendance(ctx, &models.NewAttendance{WorkerName: "lito", Date: models.NewMyDate(2024, time.June, 10)}); err != nil {
		t.Fatalf("CreateAttendance: %v", err)
	}
	if _, err := models.CreateAttendance(ctx, &models.NewAttendance{WorkerName: "Other", Date: models.NewMyDate(2024, time.June, 4)}); err != nil {
		t.Fatalf("CreateAttendance: %v", err)
	}
	negative := dec("-1")
	if _, err := models.CreateAttendance(ctx, &models.NewAttendance{WorkerName: "Lito", Date: models.NewMyDate(2024, time.June, 4), Hours: &negative}); err == nil {
		t.Fatalf("expected negative hours to fail")
	}
	missing := 404
	if _, err := models.CreateAttendance(ctx, &models.NewAttendance{WorkerName: "Lito", Date: models.NewMyDate(2024, time.June, 4), ProjectId: &missing}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected unknown project to be not found, got %v", err)
	}

	worker := " LITO"
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	rows, err := models.GetAttendances(ctx, &worker, &from, &to)
	if err != nil {
		t.Fatalf("GetAttendances: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != night.ID {
		t.Fatalf("expected only the June 3 row, got %d rows", len(rows))
	}

	if _, err := models.DeleteAttendance(ctx, night.ID); err != nil {
		t.Fatalf("DeleteAttendance: %v", err)
	}
	if _, err := models.DeleteAttendance(ctx, night.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected second delete to be not found, got %v", err)
	}
}
