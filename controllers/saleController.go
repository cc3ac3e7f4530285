package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
)

func CreateSale(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	sale, err := workflow.CreateSale(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "saleController.go", "CreateSale", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func GetSales(c *gin.Context) {
	var clientId *int
	if q := c.Query("client_id"); q != "" {
		id, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		clientId = &id
	}
	var status *models.SaleStatus
	if q := c.Query("status"); q != "" {
		s := models.SaleStatus(q)
		status = &s
	}
	sales, err := models.GetSales(c.Request.Context(), clientId, status)
	if err != nil {
		respondError(c, "saleController.go", "GetSales", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func GetSale(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, "saleController.go", "GetSale", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func DeleteSale(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := workflow.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, "saleController.go", "DeleteSale", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func CreatePayment(c *gin.Context) {
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	sale, err := workflow.CreatePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "saleController.go", "CreatePayment", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}
