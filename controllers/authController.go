package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
)

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	token, user, err := models.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// RegisterUser creates an account. Only SUPER_ADMIN can mint new users.
func RegisterUser(c *gin.Context) {
	ctx := c.Request.Context()
	if role, ok := utils.GetUserRoleFromContext(ctx); !ok || models.Role(role) != models.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorUnauthorized.Error()})
		return
	}

	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := models.CreateUser(ctx, &input)
	if err != nil {
		respondError(c, "authController.go", "RegisterUser", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func Me(c *gin.Context) {
	ctx := c.Request.Context()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := models.GetUser(ctx, userId)
	if err != nil {
		respondError(c, "authController.go", "Me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
