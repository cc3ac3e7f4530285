package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
)

func CreateInventorySession(c *gin.Context) {
	var input models.NewInventorySession
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	session, err := workflow.CreateInventorySession(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "inventoryController.go", "CreateInventorySession", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func GetInventorySessions(c *gin.Context) {
	var status *models.SessionStatus
	if q := c.Query("status"); q != "" {
		s := models.SessionStatus(q)
		status = &s
	}
	sessions, err := models.GetInventorySessions(c.Request.Context(), status)
	if err != nil {
		respondError(c, "inventoryController.go", "GetInventorySessions", err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func GetInventorySession(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	session, err := models.GetInventorySession(c.Request.Context(), id)
	if err != nil {
		respondError(c, "inventoryController.go", "GetInventorySession", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type confirmInput struct {
	Code string `json:"code" binding:"required,len=3"`
}

func ConfirmInventoryByCode(c *gin.Context) {
	var input confirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	session, err := workflow.ConfirmInventoryByCode(c.Request.Context(), input.Code)
	if err != nil {
		respondError(c, "inventoryController.go", "ConfirmInventoryByCode", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func ResolveInventoryDiscrepancy(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewInventorySession
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	session, err := workflow.ResolveInventoryDiscrepancy(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "inventoryController.go", "ResolveInventoryDiscrepancy", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func DeleteInventorySession(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := workflow.DeleteInventorySession(c.Request.Context(), id); err != nil {
		respondError(c, "inventoryController.go", "DeleteInventorySession", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
