package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
)

func GetSystemControl(c *gin.Context) {
	control, err := models.GetSystemControl(c.Request.Context())
	if err != nil {
		respondError(c, "systemController.go", "GetSystemControl", err)
		return
	}
	c.JSON(http.StatusOK, control)
}

func SetSystemTime(c *gin.Context) {
	var input models.SystemTimeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	control, err := workflow.SetSystemTime(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "systemController.go", "SetSystemTime", err)
		return
	}
	c.JSON(http.StatusOK, control)
}

func GetAuditLogs(c *gin.Context) {
	var entityType *string
	if q := c.Query("entity_type"); q != "" {
		entityType = &q
	}
	var entityId *int
	if q := c.Query("entity_id"); q != "" {
		id, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity_id"})
			return
		}
		entityId = &id
	}
	logs, err := models.GetAuditLogs(c.Request.Context(), entityType, entityId)
	if err != nil {
		respondError(c, "systemController.go", "GetAuditLogs", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
