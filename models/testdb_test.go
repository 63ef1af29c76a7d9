package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// setupDB points the package at a fresh in-memory sqlite database for one test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQLite("")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	previous := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(previous)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testContext() context.Context {
	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 7)
	ctx = utils.SetUserNameInContext(ctx, "Tester")
	return utils.SetCorrelationIdInContext(ctx, "test-correlation")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createProject(t *testing.T, ctx context.Context, name string, contract string) *models.Project {
	t.Helper()
	project, err := models.CreateProject(ctx, &models.NewProject{Name: name, ContractAmount: dec(contract)})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return project
}

func mustGetProject(t *testing.T, ctx context.Context, id int) *models.Project {
	t.Helper()
	project, err := models.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	return project
}
