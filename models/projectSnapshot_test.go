package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestComputeProjectSnapshotPaymentLedger(t *testing.T) {
	in := SnapshotInputs{
		Project: Project{ID: 1, ContractAmount: dec("100000"), OverallProgress: 35},
		Payments: []Payment{
			{Amount: dec("4000"), DatePaid: NewMyDate(2024, time.March, 5)},
			{Amount: dec("6000"), DatePaid: NewMyDate(2024, time.February, 1)},
		},
	}

	got, err := ComputeProjectSnapshot(SnapshotStrategyPaymentLedger, in)
	if err != nil {
		t.Fatalf("ComputeProjectSnapshot: %v", err)
	}
	if !got.TotalClientPayment.Equal(dec("10000")) {
		t.Fatalf("expected total_client_payment 10000, got %s", got.TotalClientPayment)
	}
	if !got.RemainingBalance.Equal(dec("90000")) {
		t.Fatalf("expected remaining_balance 90000, got %s", got.RemainingBalance)
	}
	if got.LastPaidDate == nil || got.LastPaidDate.String() != "2024-03-05" {
		t.Fatalf("expected last_paid_date 2024-03-05, got %v", got.LastPaidDate)
	}
	if got.OverallProgress != 35 {
		t.Fatalf("payment ledger must not touch progress, got %d", got.OverallProgress)
	}

	empty, err := ComputeProjectSnapshot(SnapshotStrategyPaymentLedger, SnapshotInputs{Project: Project{ContractAmount: dec("500")}})
	if err != nil {
		t.Fatalf("ComputeProjectSnapshot: %v", err)
	}
	if empty.LastPaidDate != nil || !empty.RemainingBalance.Equal(dec("500")) {
		t.Fatalf("expected no last paid date and full balance, got %v / %s", empty.LastPaidDate, empty.RemainingBalance)
	}
}

func TestComputeProjectSnapshotBudgetLedger(t *testing.T) {
	cases := []struct {
		name             string
		design           *DesignBudget
		build            *BuildBudget
		expenses         []decimal.Decimal
		contract         string
		paid             string
		constructionCost string
		progress         int
	}{
		{
			name:             "design only",
			design:           &DesignBudget{ContractAmount: dec("50000"), TotalReceived: dec("10000"), Progress: 40},
			contract:         "50000",
			paid:             "10000",
			constructionCost: "0",
			progress:         40,
		},
		{
			name:             "design and build",
			design:           &DesignBudget{ContractAmount: dec("50000"), TotalReceived: dec("50000"), Progress: 100},
			build:            &BuildBudget{ContractAmount: dec("200000"), TotalClientPayment: dec("50000")},
			expenses:         []decimal.Decimal{dec("1200.50"), dec("800")},
			contract:         "250000",
			paid:             "100000",
			constructionCost: "2000.50",
			progress:         63, // (100 + 25) / 2 = 62.5
		},
		{
			name:             "expenses without build contract",
			design:           &DesignBudget{Progress: 80},
			expenses:         []decimal.Decimal{dec("10")},
			contract:         "0",
			paid:             "0",
			constructionCost: "10",
			progress:         40,
		},
		{
			name:             "overpaid build clamps",
			design:           &DesignBudget{Progress: 100},
			build:            &BuildBudget{ContractAmount: dec("100"), TotalClientPayment: dec("500")},
			contract:         "100",
			paid:             "500",
			constructionCost: "0",
			progress:         100,
		},
		{
			name:             "no budgets",
			contract:         "0",
			paid:             "0",
			constructionCost: "0",
			progress:         0,
		},
	}
	for _, tc := range cases {
		in := SnapshotInputs{
			Project:        Project{ID: 1, ContractAmount: dec("999"), TotalClientPayment: dec("1")},
			DesignBudget:   tc.design,
			BuildBudget:    tc.build,
			ExpenseAmounts: tc.expenses,
		}
		got, err := ComputeProjectSnapshot(SnapshotStrategyBudgetLedger, in)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !got.ContractAmount.Equal(dec(tc.contract)) {
			t.Fatalf("%s: expected contract %s, got %s", tc.name, tc.contract, got.ContractAmount)
		}
		if !got.TotalClientPayment.Equal(dec(tc.paid)) {
			t.Fatalf("%s: expected paid %s, got %s", tc.name, tc.paid, got.TotalClientPayment)
		}
		if !got.ConstructionCost.Equal(dec(tc.constructionCost)) {
			t.Fatalf("%s: expected construction cost %s, got %s", tc.name, tc.constructionCost, got.ConstructionCost)
		}
		if got.OverallProgress != tc.progress {
			t.Fatalf("%s: expected progress %d, got %d", tc.name, tc.progress, got.OverallProgress)
		}
		if !got.RemainingBalance.Equal(got.ContractAmount.Sub(got.TotalClientPayment)) {
			t.Fatalf("%s: remaining balance %s out of sync", tc.name, got.RemainingBalance)
		}
		if tc.design != nil && !got.DesignFee.Equal(tc.design.ContractAmount) {
			t.Fatalf("%s: expected design fee %s, got %s", tc.name, tc.design.ContractAmount, got.DesignFee)
		}
	}
}

func TestComputeProjectSnapshotExpenseLedgerOnlyTouchesConstructionCost(t *testing.T) {
	project := Project{ContractAmount: dec("1000"), TotalClientPayment: dec("400"), RemainingBalance: dec("600"), OverallProgress: 50}
	got, err := ComputeProjectSnapshot(SnapshotStrategyExpenseLedger, SnapshotInputs{
		Project:        project,
		ExpenseAmounts: []decimal.Decimal{dec("100"), dec("25.25")},
	})
	if err != nil {
		t.Fatalf("ComputeProjectSnapshot: %v", err)
	}
	if !got.ConstructionCost.Equal(dec("125.25")) {
		t.Fatalf("expected construction cost 125.25, got %s", got.ConstructionCost)
	}
	if !got.ContractAmount.Equal(dec("1000")) || got.OverallProgress != 50 || !got.RemainingBalance.Equal(dec("600")) {
		t.Fatalf("expense ledger changed unrelated fields: %+v", got)
	}
}

func TestComputeProjectSnapshotScopeProgress(t *testing.T) {
	scopes := func(values ...string) []ProjectScope {
		var out []ProjectScope
		for _, v := range values {
			out = append(out, ProjectScope{ProgressPercent: dec(v)})
		}
		return out
	}
	cases := []struct {
		scopes   []ProjectScope
		expected int
	}{
		{scopes("50", "70", "90"), 70},
		{nil, 0},
		{scopes("33.3", "33.4"), 33},
		{scopes("0.5"), 1},
		{scopes("150", "100"), 100},
		{scopes("-20"), 0},
	}
	for _, tc := range cases {
		got, err := ComputeProjectSnapshot(SnapshotStrategyScopeProgress, SnapshotInputs{
			Project: Project{OverallProgress: 12, ContractAmount: dec("10")},
			Scopes:  tc.scopes,
		})
		if err != nil {
			t.Fatalf("ComputeProjectSnapshot: %v", err)
		}
		if got.OverallProgress != tc.expected {
			t.Fatalf("scopes %v: expected %d, got %d", tc.scopes, tc.expected, got.OverallProgress)
		}
	}
}

func TestComputeProjectSnapshotRejectsUnknownStrategy(t *testing.T) {
	if _, err := ComputeProjectSnapshot(SnapshotStrategy("bogus"), SnapshotInputs{}); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestDesignProgressWithBaseline(t *testing.T) {
	cases := []struct {
		name        string
		previous    string
		downpayment string
		requested   int
		baseline    int
		expected    int
	}{
		{"first downpayment raises progress", "0", "5000", 10, 20, 20},
		{"first downpayment keeps higher progress", "0", "5000", 45, 20, 45},
		{"later downpayment leaves progress", "1000", "5000", 10, 20, 10},
		{"no downpayment leaves progress", "0", "0", 10, 20, 10},
		{"baseline zero", "0", "5000", 5, 0, 5},
		{"baseline hundred", "0", "1", 5, 100, 100},
	}
	for _, tc := range cases {
		input := &NewDesignBudget{Downpayment: dec(tc.downpayment), Progress: tc.requested}
		got := designProgressWithBaseline(dec(tc.previous), input, tc.baseline)
		if got != tc.expected {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.expected, got)
		}
	}
}

func TestParseSnapshotStrategy(t *testing.T) {
	for _, s := range AllSnapshotStrategies {
		got, err := ParseSnapshotStrategy(" " + string(s) + " ")
		if err != nil || got != s {
			t.Fatalf("ParseSnapshotStrategy(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseSnapshotStrategy("everything"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
