package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
)

func CreateContainer(c *gin.Context) {
	var input models.NewContainer
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	container, err := workflow.CreateContainer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "containerController.go", "CreateContainer", err)
		return
	}
	c.JSON(http.StatusCreated, container)
}

func GetContainers(c *gin.Context) {
	var status *models.ContainerStatus
	if q := c.Query("status"); q != "" {
		s := models.ContainerStatus(q)
		if err := s.Validate(); err != nil {
			respondBadRequest(c, err)
			return
		}
		status = &s
	}
	containers, err := models.GetContainers(c.Request.Context(), status)
	if err != nil {
		respondError(c, "containerController.go", "GetContainers", err)
		return
	}
	c.JSON(http.StatusOK, containers)
}

func GetContainer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	container, err := models.GetContainer(c.Request.Context(), id)
	if err != nil {
		respondError(c, "containerController.go", "GetContainer", err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func UpdateContainer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.UpdateContainerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	container, err := workflow.UpdateContainer(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "containerController.go", "UpdateContainer", err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func DeleteContainer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := workflow.DeleteContainer(c.Request.Context(), id); err != nil {
		respondError(c, "containerController.go", "DeleteContainer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// GetInvestorBalances is the settlement view: owed, paid and remaining per
// investor for one container.
func GetInvestorBalances(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	balances, err := models.GetInvestorBalances(c.Request.Context(), id)
	if err != nil {
		respondError(c, "containerController.go", "GetInvestorBalances", err)
		return
	}
	c.JSON(http.StatusOK, balances)
}
