package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/sitebooks_backend/models"
)

func listPayments(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	payments, err := models.GetPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, "listPayments", id, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func createPayment(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewPayment
	if !bindJSON(c, "createPayment", &input) {
		return
	}
	payment, err := models.CreatePayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "createPayment", input, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func updatePayment(c *gin.Context) {
	id, ok := paramId(c, "paymentId")
	if !ok {
		return
	}
	var input models.NewPayment
	if !bindJSON(c, "updatePayment", &input) {
		return
	}
	payment, err := models.UpdatePayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updatePayment", input, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func deletePayment(c *gin.Context) {
	id, ok := paramId(c, "paymentId")
	if !ok {
		return
	}
	payment, err := models.DeletePayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deletePayment", id, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func listExpenses(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	expenses, err := models.GetExpenses(c.Request.Context(), id)
	if err != nil {
		respondError(c, "listExpenses", id, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func createExpense(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewExpense
	if !bindJSON(c, "createExpense", &input) {
		return
	}
	expense, err := models.CreateExpense(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "createExpense", input, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func updateExpense(c *gin.Context) {
	id, ok := paramId(c, "expenseId")
	if !ok {
		return
	}
	var input models.NewExpense
	if !bindJSON(c, "updateExpense", &input) {
		return
	}
	expense, err := models.UpdateExpense(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateExpense", input, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func deleteExpense(c *gin.Context) {
	id, ok := paramId(c, "expenseId")
	if !ok {
		return
	}
	expense, err := models.DeleteExpense(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteExpense", id, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func listProjectScopes(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	scopes, err := models.GetProjectScopes(c.Request.Context(), id)
	if err != nil {
		respondError(c, "listProjectScopes", id, err)
		return
	}
	c.JSON(http.StatusOK, scopes)
}

func createProjectScope(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewProjectScope
	if !bindJSON(c, "createProjectScope", &input) {
		return
	}
	scope, err := models.CreateProjectScope(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "createProjectScope", input, err)
		return
	}
	c.JSON(http.StatusCreated, scope)
}

func updateProjectScope(c *gin.Context) {
	id, ok := paramId(c, "scopeId")
	if !ok {
		return
	}
	var input models.NewProjectScope
	if !bindJSON(c, "updateProjectScope", &input) {
		return
	}
	scope, err := models.UpdateProjectScope(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateProjectScope", input, err)
		return
	}
	c.JSON(http.StatusOK, scope)
}

func deleteProjectScope(c *gin.Context) {
	id, ok := paramId(c, "scopeId")
	if !ok {
		return
	}
	scope, err := models.DeleteProjectScope(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteProjectScope", id, err)
		return
	}
	c.JSON(http.StatusOK, scope)
}
