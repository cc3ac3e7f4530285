package models

import "errors"

type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusLocked PeriodStatus = "LOCKED"
)

type ContainerStatus string

const (
	ContainerStatusInTransit ContainerStatus = "IN_TRANSIT"
	ContainerStatusArrived   ContainerStatus = "ARRIVED"
	ContainerStatusClosed    ContainerStatus = "CLOSED"
)

func (s ContainerStatus) Validate() error {
	switch s {
	case ContainerStatusInTransit, ContainerStatusArrived, ContainerStatusClosed:
		return nil
	}
	return errors.New("invalid container status")
}

type SaleStatus string

const (
	SaleStatusPaid    SaleStatus = "PAID"
	SaleStatusPartial SaleStatus = "PARTIAL"
	SaleStatusDebt    SaleStatus = "DEBT"
)

type SessionStatus string

const (
	SessionStatusPending     SessionStatus = "PENDING"
	SessionStatusDiscrepancy SessionStatus = "DISCREPANCY"
	SessionStatusConfirmed   SessionStatus = "CONFIRMED"
)

type Role string

const (
	RoleSeller     Role = "SELLER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func (r Role) Validate() error {
	switch r {
	case RoleSeller, RoleAdmin, RoleSuperAdmin:
		return nil
	}
	return errors.New("invalid role")
}

// Audit action names. One row per action, append-only.
const (
	AuditActionPeriodLock         = "PERIOD_LOCK"
	AuditActionPeriodUnlock       = "PERIOD_UNLOCK"
	AuditActionContainerCreate    = "CONTAINER_CREATE"
	AuditActionContainerUpdate    = "CONTAINER_UPDATE"
	AuditActionContainerDelete    = "CONTAINER_DELETE"
	AuditActionExpenseCreate      = "EXPENSE_CREATE"
	AuditActionExpenseCorrect     = "EXPENSE_CORRECT"
	AuditActionExpenseDelete      = "EXPENSE_DELETE"
	AuditActionInvestmentCreate   = "INVESTMENT_CREATE"
	AuditActionInvestmentUpdate   = "INVESTMENT_UPDATE"
	AuditActionInvestmentDelete   = "INVESTMENT_DELETE"
	AuditActionPayoutCreate       = "PAYOUT_CREATE"
	AuditActionSaleCreate         = "SALE_CREATE"
	AuditActionSaleDelete         = "SALE_DELETE"
	AuditActionPaymentCreate      = "PAYMENT_CREATE"
	AuditActionReturnCreate       = "RETURN_CREATE"
	AuditActionInventoryCreate    = "INVENTORY_SESSION_CREATE"
	AuditActionInventoryConfirm   = "INVENTORY_SESSION_CONFIRM"
	AuditActionInventoryResolve   = "INVENTORY_DISCREPANCY_RESOLVE"
	AuditActionInventoryDelete    = "INVENTORY_SESSION_DELETE"
	AuditActionSystemTimeOverride = "SYSTEM_TIME_OVERRIDE"
)
