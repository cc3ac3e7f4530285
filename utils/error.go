package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Financial write barrier.
var ErrorPeriodLocked = errors.New("financial period is locked")

// Sale/return stock violations.
var (
	ErrorInsufficientStock      = errors.New("insufficient stock on hand")
	ErrorReturnExceedsRemaining = errors.New("return quantity exceeds remaining sold quantity")
)

// Inventory count confirmation.
var (
	ErrorDiscrepancyBlocksConfirmation = errors.New("session has unresolved discrepancies")
	ErrorCodeExpired                   = errors.New("confirmation code has expired")
	ErrorCodeGenerationExhausted       = errors.New("could not generate a unique confirmation code")
)

var ErrorUnauthorized = errors.New("operation not allowed for this role")
