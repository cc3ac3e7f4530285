package models

import (
	"log"

	"github.com/ossotrade/osso_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&FinancialPeriod{},
		&Container{}, &ContainerItem{}, &ContainerExpense{}, &ExpenseCorrection{},
		&Investor{}, &ContainerInvestment{}, &InvestorPayout{},
		&Product{}, &Client{},
		&Sale{}, &SaleItem{}, &Payment{},
		&Return{}, &ReturnItem{},
		&InventorySession{}, &InventorySessionItem{},
		&DocumentCounter{},
		&AuditLog{},
		&SystemControl{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
