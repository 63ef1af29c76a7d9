package models

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/sitebooks_backend/config"
)

type lockCall struct {
	projectId int
	funcName  string
	released  bool
}

// recordProjectLocks swaps in an in-memory lock on a fresh sqlite database.
func recordProjectLocks(t *testing.T) *[]*lockCall {
	t.Helper()
	db, err := config.OpenSQLite("")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	previousDB := config.GetDB()
	config.SetDB(db)

	calls := &[]*lockCall{}
	previousLock := lockProject
	lockProject = func(ctx context.Context, projectId int, funcName string) func() {
		call := &lockCall{projectId: projectId, funcName: funcName}
		*calls = append(*calls, call)
		return func() { call.released = true }
	}
	t.Cleanup(func() {
		lockProject = previousLock
		config.SetDB(previousDB)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return calls
}

func TestProjectWritersTakeProjectLock(t *testing.T) {
	calls := recordProjectLocks(t)
	ctx := context.Background()

	project, err := CreateProject(ctx, &NewProject{Name: "Lakeside", ContractAmount: dec("1000")})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := CreatePayment(ctx, project.ID, &NewPayment{Amount: dec("100"), DatePaid: NewMyDate(2024, time.May, 2)}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if _, err := UpdateProjectFinancials(ctx, project.ID, &NewProjectFinancials{ContractAmount: dec("2000")}); err != nil {
		t.Fatalf("UpdateProjectFinancials: %v", err)
	}
	if _, err := UpdateProjectPhase(ctx, project.ID, "FOR_BUILD"); err != nil {
		t.Fatalf("UpdateProjectPhase: %v", err)
	}
	if _, err := DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	want := []string{"CreatePayment", "UpdateProjectFinancials", "UpdateProjectPhase", "DeleteProject"}
	if len(*calls) != len(want) {
		t.Fatalf("expected %d project locks, got %d", len(want), len(*calls))
	}
	for i, call := range *calls {
		if call.funcName != want[i] || call.projectId != project.ID {
			t.Fatalf("lock %d: expected %s on project %d, got %s on %d", i, want[i], project.ID, call.funcName, call.projectId)
		}
		if !call.released {
			t.Fatalf("lock %d (%s) was not released", i, call.funcName)
		}
	}
}

func TestProjectLockReleasedOnMissingProject(t *testing.T) {
	calls := recordProjectLocks(t)

	if _, err := UpdateProjectPhase(context.Background(), 404, "FOR_BUILD"); err == nil {
		t.Fatalf("expected an error for a missing project")
	}
	if len(*calls) != 1 || !(*calls)[0].released {
		t.Fatalf("expected one released lock, got %+v", *calls)
	}
}
