package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/sitebooks_backend/models"
)

func listProjects(c *gin.Context) {
	projects, err := models.GetProjects(c.Request.Context(), optionalQuery(c, "name"))
	if err != nil {
		respondError(c, "listProjects", nil, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func createProject(c *gin.Context) {
	var input models.NewProject
	if !bindJSON(c, "createProject", &input) {
		return
	}
	project, err := models.CreateProject(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createProject", input, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func getProject(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	project, err := models.GetProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getProject", id, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func updateProjectFinancials(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewProjectFinancials
	if !bindJSON(c, "updateProjectFinancials", &input) {
		return
	}
	project, err := models.UpdateProjectFinancials(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateProjectFinancials", input, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type phaseRequest struct {
	Phase string `json:"phase" binding:"required,max=50"`
}

func updateProjectPhase(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input phaseRequest
	if !bindJSON(c, "updateProjectPhase", &input) {
		return
	}
	project, err := models.UpdateProjectPhase(c.Request.Context(), id, input.Phase)
	if err != nil {
		respondError(c, "updateProjectPhase", input, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func deleteProject(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	project, err := models.DeleteProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteProject", id, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type recomputeRequest struct {
	Strategy string `json:"strategy" binding:"required"`
}

func recomputeProject(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input recomputeRequest
	if !bindJSON(c, "recomputeProject", &input) {
		return
	}
	strategy, err := models.ParseSnapshotStrategy(input.Strategy)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := models.RecomputeProject(c.Request.Context(), id, strategy)
	if err != nil {
		respondError(c, "recomputeProject", input, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func getProjectHistory(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	histories, err := models.GetHistories(c.Request.Context(), "projects", id)
	if err != nil {
		respondError(c, "getProjectHistory", id, err)
		return
	}
	c.JSON(http.StatusOK, histories)
}
