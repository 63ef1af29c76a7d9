package handlers

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	projects := api.Group("/projects")
	projects.GET("", listProjects)
	projects.POST("", createProject)
	projects.GET("/:id", getProject)
	projects.PUT("/:id/financials", updateProjectFinancials)
	projects.PUT("/:id/phase", updateProjectPhase)
	projects.DELETE("/:id", deleteProject)
	projects.POST("/:id/recompute", recomputeProject)
	projects.GET("/:id/history", getProjectHistory)

	projects.GET("/:id/design-budget", getDesignBudget)
	projects.PUT("/:id/design-budget", updateDesignBudget)
	projects.GET("/:id/build-budget", getBuildBudget)
	projects.PUT("/:id/build-budget", updateBuildBudget)

	projects.GET("/:id/payments", listPayments)
	projects.POST("/:id/payments", createPayment)
	api.PUT("/payments/:paymentId", updatePayment)
	api.DELETE("/payments/:paymentId", deletePayment)

	projects.GET("/:id/expenses", listExpenses)
	projects.POST("/:id/expenses", createExpense)
	api.PUT("/expenses/:expenseId", updateExpense)
	api.DELETE("/expenses/:expenseId", deleteExpense)

	projects.GET("/:id/scopes", listProjectScopes)
	projects.POST("/:id/scopes", createProjectScope)
	api.PUT("/scopes/:scopeId", updateProjectScope)
	api.DELETE("/scopes/:scopeId", deleteProjectScope)

	api.GET("/attendances", listAttendances)
	api.POST("/attendances", createAttendance)
	api.DELETE("/attendances/:attendanceId", deleteAttendance)

	api.GET("/payroll-cutoffs", listPayrollCutoffs)
	api.POST("/payroll-cutoffs", createPayrollCutoff)
	api.GET("/payroll-cutoffs/:cutoffId", getPayrollCutoff)
	api.POST("/payroll-cutoffs/:cutoffId/generate", generatePayroll)
	api.POST("/payroll-cutoffs/:cutoffId/mark-paid", markPayrollCutoffPaid)

	api.GET("/payrolls", listPayrolls)
	api.POST("/payrolls", createPayroll)
	api.GET("/payrolls/:payrollId", getPayroll)
	api.PUT("/payrolls/:payrollId", updatePayroll)
	api.DELETE("/payrolls/:payrollId", deletePayroll)

	api.GET("/reports/payroll-allocation", getPayrollAllocationReport)
	api.GET("/reports/project-profitability", getProjectProfitabilityReport)
	api.GET("/reports/project-profitability.xlsx", exportProjectProfitabilityReport)
}
