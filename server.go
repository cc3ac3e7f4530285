package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/controllers"
	"github.com/ossotrade/osso_backend/middlewares"
	"github.com/ossotrade/osso_backend/models"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Correlation-Id"},
		ExposeHeaders:    []string{"X-Correlation-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middlewares.AuthMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", controllers.Login)
		api.POST("/auth/register", controllers.RegisterUser)
		api.GET("/auth/me", controllers.Me)

		api.POST("/products", controllers.CreateProduct)
		api.GET("/products", controllers.GetProducts)
		api.GET("/products/:id", controllers.GetProduct)

		api.POST("/clients", controllers.CreateClient)
		api.GET("/clients", controllers.GetClients)
		api.GET("/clients/:id", controllers.GetClient)

		api.POST("/investors", controllers.CreateInvestor)
		api.GET("/investors", controllers.GetInvestors)
		api.GET("/investors/:id", controllers.GetInvestor)

		api.GET("/periods", controllers.GetFinancialPeriods)
		api.GET("/periods/current", controllers.GetCurrentFinancialPeriod)
		api.GET("/periods/:id", controllers.GetFinancialPeriod)
		api.POST("/periods/:id/lock", controllers.LockFinancialPeriod)
		api.POST("/periods/:id/unlock", controllers.UnlockFinancialPeriod)

		api.POST("/containers", controllers.CreateContainer)
		api.GET("/containers", controllers.GetContainers)
		api.GET("/containers/:id", controllers.GetContainer)
		api.PUT("/containers/:id", controllers.UpdateContainer)
		api.DELETE("/containers/:id", controllers.DeleteContainer)
		api.GET("/containers/:id/balances", controllers.GetInvestorBalances)

		api.POST("/expenses", controllers.CreateContainerExpense)
		api.GET("/expenses/:id", controllers.GetContainerExpense)
		api.POST("/expenses/:id/corrections", controllers.CorrectContainerExpense)
		api.DELETE("/expenses/:id", controllers.DeleteContainerExpense)

		api.POST("/investments", controllers.CreateInvestment)
		api.PUT("/investments/:id", controllers.UpdateInvestment)
		api.DELETE("/investments/:id", controllers.DeleteInvestment)
		api.POST("/payouts", controllers.CreatePayout)

		api.POST("/sales", controllers.CreateSale)
		api.GET("/sales", controllers.GetSales)
		api.GET("/sales/:id", controllers.GetSale)
		api.DELETE("/sales/:id", controllers.DeleteSale)
		api.POST("/payments", controllers.CreatePayment)

		api.POST("/returns", controllers.CreateReturn)
		api.GET("/returns/:id", controllers.GetReturn)

		api.POST("/inventory/sessions", controllers.CreateInventorySession)
		api.GET("/inventory/sessions", controllers.GetInventorySessions)
		api.GET("/inventory/sessions/:id", controllers.GetInventorySession)
		api.POST("/inventory/confirm", controllers.ConfirmInventoryByCode)
		api.POST("/inventory/sessions/:id/resolve", controllers.ResolveInventoryDiscrepancy)
		api.DELETE("/inventory/sessions/:id", controllers.DeleteInventorySession)

		api.GET("/system", controllers.GetSystemControl)
		api.PUT("/system/time", controllers.SetSystemTime)
		api.GET("/audit", controllers.GetAuditLogs)
	}
	return r
}

func main() {
	logger := config.GetLogger()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(),
	}

	go func() {
		logger.WithFields(logrus.Fields{"port": port}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
}
