package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/models/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func getPayrollAllocationReport(c *gin.Context) {
	allocation, err := models.LoadPayrollAllocation(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, "getPayrollAllocationReport", nil, err)
		return
	}
	c.JSON(http.StatusOK, allocation)
}

func getProjectProfitabilityReport(c *gin.Context) {
	report, err := reports.GetProjectProfitabilityReport(c.Request.Context())
	if err != nil {
		respondError(c, "getProjectProfitabilityReport", nil, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func exportProjectProfitabilityReport(c *gin.Context) {
	report, err := reports.GetProjectProfitabilityReport(c.Request.Context())
	if err != nil {
		respondError(c, "exportProjectProfitabilityReport", nil, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteProjectProfitabilityWorkbook(report, &buf); err != nil {
		respondError(c, "exportProjectProfitabilityReport", nil, err)
		return
	}
	filename := fmt.Sprintf("project-profitability-%s.xlsx", report.GeneratedAt.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
