package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/workflow"
)

func GetFinancialPeriods(c *gin.Context) {
	periods, err := models.GetFinancialPeriods(c.Request.Context())
	if err != nil {
		respondError(c, "periodController.go", "GetFinancialPeriods", err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

func GetFinancialPeriod(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	period, err := models.GetFinancialPeriod(c.Request.Context(), id)
	if err != nil {
		respondError(c, "periodController.go", "GetFinancialPeriod", err)
		return
	}
	c.JSON(http.StatusOK, period)
}

// GetCurrentFinancialPeriod resolves (and lazily creates) the period the
// system clock currently falls in.
func GetCurrentFinancialPeriod(c *gin.Context) {
	ctx := c.Request.Context()
	now, err := models.GetSystemNow(ctx)
	if err != nil {
		respondError(c, "periodController.go", "GetCurrentFinancialPeriod", err)
		return
	}
	db := config.GetDB()
	tx := db.Begin()
	defer tx.Rollback()
	period, err := models.ResolveCurrentPeriod(tx, ctx, now)
	if err != nil {
		respondError(c, "periodController.go", "GetCurrentFinancialPeriod", err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		respondError(c, "periodController.go", "GetCurrentFinancialPeriod", err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func LockFinancialPeriod(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.PeriodLockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	period, err := workflow.LockFinancialPeriod(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "periodController.go", "LockFinancialPeriod", err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func UnlockFinancialPeriod(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.PeriodLockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	period, err := workflow.UnlockFinancialPeriod(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "periodController.go", "UnlockFinancialPeriod", err)
		return
	}
	c.JSON(http.StatusOK, period)
}
