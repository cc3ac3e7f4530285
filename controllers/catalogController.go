package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
)

func CreateProduct(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "catalogController.go", "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func GetProducts(c *gin.Context) {
	var name *string
	if q := c.Query("name"); q != "" {
		name = &q
	}
	products, err := models.GetProducts(c.Request.Context(), name)
	if err != nil {
		respondError(c, "catalogController.go", "GetProducts", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func GetProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, "catalogController.go", "GetProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func CreateClient(c *gin.Context) {
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	client, err := models.CreateClient(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "catalogController.go", "CreateClient", err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func GetClients(c *gin.Context) {
	var name *string
	if q := c.Query("name"); q != "" {
		name = &q
	}
	clients, err := models.GetClients(c.Request.Context(), name)
	if err != nil {
		respondError(c, "catalogController.go", "GetClients", err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func GetClient(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	client, err := models.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, "catalogController.go", "GetClient", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func CreateInvestor(c *gin.Context) {
	var input models.NewInvestor
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	investor, err := models.CreateInvestor(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "catalogController.go", "CreateInvestor", err)
		return
	}
	c.JSON(http.StatusCreated, investor)
}

func GetInvestors(c *gin.Context) {
	investors, err := models.GetInvestors(c.Request.Context())
	if err != nil {
		respondError(c, "catalogController.go", "GetInvestors", err)
		return
	}
	c.JSON(http.StatusOK, investors)
}

func GetInvestor(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	investor, err := models.GetInvestor(c.Request.Context(), id)
	if err != nil {
		respondError(c, "catalogController.go", "GetInvestor", err)
		return
	}
	c.JSON(http.StatusOK, investor)
}
