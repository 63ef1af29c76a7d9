package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/sitebooks_backend/models"
)

func getDesignBudget(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	budget, err := models.GetOrCreateDesignBudget(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getDesignBudget", id, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func updateDesignBudget(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewDesignBudget
	if !bindJSON(c, "updateDesignBudget", &input) {
		return
	}
	budget, err := models.UpdateDesignBudget(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateDesignBudget", input, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func getBuildBudget(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	budget, err := models.GetOrCreateBuildBudget(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getBuildBudget", id, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func updateBuildBudget(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewBuildBudget
	if !bindJSON(c, "updateBuildBudget", &input) {
		return
	}
	budget, err := models.UpdateBuildBudget(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateBuildBudget", input, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}
