package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/utils"
)

func listAttendances(c *gin.Context) {
	fromDate, err := utils.ParseDate(c.Query("from"))
	if err != nil {
		respondError(c, "listAttendances", nil, utils.NewValidationError("from", "datetime=2006-01-02"))
		return
	}
	toDate, err := utils.ParseDate(c.Query("to"))
	if err != nil {
		respondError(c, "listAttendances", nil, utils.NewValidationError("to", "datetime=2006-01-02"))
		return
	}
	attendances, err := models.GetAttendances(c.Request.Context(), optionalQuery(c, "worker"), fromDate, toDate)
	if err != nil {
		respondError(c, "listAttendances", nil, err)
		return
	}
	c.JSON(http.StatusOK, attendances)
}

func createAttendance(c *gin.Context) {
	var input models.NewAttendance
	if !bindJSON(c, "createAttendance", &input) {
		return
	}
	attendance, err := models.CreateAttendance(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createAttendance", input, err)
		return
	}
	c.JSON(http.StatusCreated, attendance)
}

func deleteAttendance(c *gin.Context) {
	id, ok := paramId(c, "attendanceId")
	if !ok {
		return
	}
	attendance, err := models.DeleteAttendance(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteAttendance", id, err)
		return
	}
	c.JSON(http.StatusOK, attendance)
}

func listPayrollCutoffs(c *gin.Context) {
	cutoffs, err := models.GetPayrollCutoffs(c.Request.Context())
	if err != nil {
		respondError(c, "listPayrollCutoffs", nil, err)
		return
	}
	c.JSON(http.StatusOK, cutoffs)
}

func createPayrollCutoff(c *gin.Context) {
	var input models.NewPayrollCutoff
	if !bindJSON(c, "createPayrollCutoff", &input) {
		return
	}
	cutoff, err := models.CreatePayrollCutoff(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createPayrollCutoff", input, err)
		return
	}
	c.JSON(http.StatusCreated, cutoff)
}

func getPayrollCutoff(c *gin.Context) {
	id, ok := paramId(c, "cutoffId")
	if !ok {
		return
	}
	cutoff, err := models.GetPayrollCutoff(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getPayrollCutoff", id, err)
		return
	}
	c.JSON(http.StatusOK, cutoff)
}

func generatePayroll(c *gin.Context) {
	id, ok := paramId(c, "cutoffId")
	if !ok {
		return
	}
	var input models.GeneratePayrollInput
	// an empty body generates at a zero default rate
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, "generatePayroll", &input) {
			return
		}
	}
	payrolls, err := models.GeneratePayrollForCutoff(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "generatePayroll", id, err)
		return
	}
	c.JSON(http.StatusOK, payrolls)
}

func markPayrollCutoffPaid(c *gin.Context) {
	id, ok := paramId(c, "cutoffId")
	if !ok {
		return
	}
	cutoff, err := models.MarkPayrollCutoffPaid(c.Request.Context(), id)
	if err != nil {
		respondError(c, "markPayrollCutoffPaid", id, err)
		return
	}
	c.JSON(http.StatusOK, cutoff)
}

func listPayrolls(c *gin.Context) {
	var cutoffId *int
	if v := c.Query("cutoff_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, "listPayrolls", v, utils.NewValidationError("cutoff_id", "number"))
			return
		}
		cutoffId = &n
	}
	payrolls, err := models.GetPayrolls(c.Request.Context(), cutoffId, optionalQuery(c, "worker"))
	if err != nil {
		respondError(c, "listPayrolls", nil, err)
		return
	}
	c.JSON(http.StatusOK, payrolls)
}

func getPayroll(c *gin.Context) {
	id, ok := paramId(c, "payrollId")
	if !ok {
		return
	}
	payroll, err := models.GetPayroll(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getPayroll", id, err)
		return
	}
	c.JSON(http.StatusOK, payroll)
}

func createPayroll(c *gin.Context) {
	var input models.NewPayroll
	if !bindJSON(c, "createPayroll", &input) {
		return
	}
	payroll, err := models.CreatePayroll(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createPayroll", input, err)
		return
	}
	c.JSON(http.StatusCreated, payroll)
}

func updatePayroll(c *gin.Context) {
	id, ok := paramId(c, "payrollId")
	if !ok {
		return
	}
	var input models.NewPayroll
	if !bindJSON(c, "updatePayroll", &input) {
		return
	}
	payroll, err := models.UpdatePayroll(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updatePayroll", input, err)
		return
	}
	c.JSON(http.StatusOK, payroll)
}

func deletePayroll(c *gin.Context) {
	id, ok := paramId(c, "payrollId")
	if !ok {
		return
	}
	payroll, err := models.DeletePayroll(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deletePayroll", id, err)
		return
	}
	c.JSON(http.StatusOK, payroll)
}
