package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
)

func CreateContainerExpense(c *gin.Context) {
	var input models.NewContainerExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	expense, err := workflow.CreateContainerExpense(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "expenseController.go", "CreateContainerExpense", err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func GetContainerExpense(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	expense, err := models.GetContainerExpense(c.Request.Context(), id)
	if err != nil {
		respondError(c, "expenseController.go", "GetContainerExpense", err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func CorrectContainerExpense(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewExpenseCorrection
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	expense, err := workflow.CorrectContainerExpense(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "expenseController.go", "CorrectContainerExpense", err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func DeleteContainerExpense(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := workflow.DeleteContainerExpense(c.Request.Context(), id); err != nil {
		respondError(c, "expenseController.go", "DeleteContainerExpense", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
