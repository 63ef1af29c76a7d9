package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/utils"
)

func parseStrategies(raw string) ([]models.SnapshotStrategy, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "all") {
		return models.AllSnapshotStrategies, nil
	}
	var strategies []models.SnapshotStrategy
	for _, part := range strings.Split(raw, ",") {
		s, err := models.ParseSnapshotStrategy(part)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

func main() {
	projectID := flag.Int("project-id", 0, "Optional: recompute only one project. If 0, recomputes every project.")
	strategyFlag := flag.String("strategy", "", "Required: payment_ledger, budget_ledger, expense_ledger, scope_progress (comma separated) or all. Strategies run in the order given; the last one to write a field wins.")
	dryRun := flag.Bool("dry-run", false, "Print the recomputed snapshots and roll back.")
	flag.Parse()

	strategies, err := parseStrategies(*strategyFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -strategy: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	// History rows need an actor.
	ctx = utils.SetUserNameInContext(ctx, "RecomputeSnapshots")

	var projectIDs []int
	query := db.WithContext(ctx).Model(&models.Project{}).Order("id")
	if *projectID > 0 {
		query = query.Where("id = ?", *projectID)
	}
	if err := query.Pluck("id", &projectIDs).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list projects: %v\n", err)
		os.Exit(1)
	}
	if len(projectIDs) == 0 {
		fmt.Fprintln(os.Stderr, "no projects found to recompute")
		return
	}

	failed := 0
	for _, id := range projectIDs {
		tx := db.WithContext(ctx).Begin()
		var project *models.Project
		for _, s := range strategies {
			if project, err = models.RecomputeProjectSnapshot(ctx, tx, id, s); err != nil {
				break
			}
		}
		if err != nil {
			tx.Rollback()
			failed++
			fmt.Fprintf(os.Stderr, "project %d recompute failed: %v\n", id, err)
			continue
		}

		fmt.Printf("project=%d contract=%s paid=%s remaining=%s cost=%s progress=%d\n",
			id, project.ContractAmount.StringFixed(2), project.TotalClientPayment.StringFixed(2),
			project.RemainingBalance.StringFixed(2), project.ConstructionCost.StringFixed(2), project.OverallProgress)

		if *dryRun {
			tx.Rollback()
			continue
		}
		if err := tx.Commit().Error; err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "project %d commit failed: %v\n", id, err)
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d projects failed\n", failed, len(projectIDs))
		os.Exit(1)
	}
	if *dryRun {
		fmt.Println("Dry run complete (rolled back)")
		return
	}
	fmt.Println("Recompute complete")
}
