package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
	"github.com/shopspring/decimal"
)

func CreateInvestment(c *gin.Context) {
	var input models.NewContainerInvestment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	investment, err := workflow.CreateInvestment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "investmentController.go", "CreateInvestment", err)
		return
	}
	c.JSON(http.StatusCreated, investment)
}

type updateInvestmentInput struct {
	InvestedAmount decimal.Decimal `json:"invested_amount" binding:"required"`
}

func UpdateInvestment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input updateInvestmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	investment, err := workflow.UpdateInvestment(c.Request.Context(), id, input.InvestedAmount)
	if err != nil {
		respondError(c, "investmentController.go", "UpdateInvestment", err)
		return
	}
	c.JSON(http.StatusOK, investment)
}

func DeleteInvestment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := workflow.DeleteInvestment(c.Request.Context(), id); err != nil {
		respondError(c, "investmentController.go", "DeleteInvestment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func CreatePayout(c *gin.Context) {
	var input models.NewInvestorPayout
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	payout, err := workflow.CreatePayout(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "investmentController.go", "CreatePayout", err)
		return
	}
	c.JSON(http.StatusCreated, payout)
}
