package models

import (
	"github.com/mmdatafocus/sitebooks_backend/config"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&Project{}, &DesignBudget{}, &BuildBudget{},
	&Payment{}, &Expense{}, &ProjectScope{},
	&Attendance{}, &PayrollCutoff{}, &Payroll{},
	&History{},
}

// AutoMigrate creates or updates every table on db.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}

func MigrateTable() {
	logger := config.GetLogger()
	if err := AutoMigrate(config.GetDB()); err != nil {
		logger.WithField("field", "MigrateTable").Fatal(err)
	}
}
