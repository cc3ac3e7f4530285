package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
)

func CreateReturn(c *gin.Context) {
	var input models.NewReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	saleReturn, err := workflow.CreateReturn(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "returnController.go", "CreateReturn", err)
		return
	}
	c.JSON(http.StatusCreated, saleReturn)
}

func GetReturn(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	saleReturn, err := models.GetReturn(c.Request.Context(), id)
	if err != nil {
		respondError(c, "returnController.go", "GetReturn", err)
		return
	}
	c.JSON(http.StatusOK, saleReturn)
}
