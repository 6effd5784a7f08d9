package payroll

import "errors"

var (
	ErrPeriodNotFound         = errors.New("payroll period not found")
	ErrInvalidPeriodState     = errors.New("payroll period is not in a valid state for this operation")
	ErrNoItemsToProcess       = errors.New("payroll period has no items to process")
	ErrConcurrentModification = errors.New("payroll period was modified concurrently, retry")
	ErrUnknownTaxPolicy       = errors.New("unknown tax policy")
	ErrPeriodHasContributions = errors.New("payroll period still has NSSF contributions, delete them first")

	// ErrDuplicateItem is absorbed by generation and never returned to callers.
	ErrDuplicateItem = errors.New("payroll item already exists for this employee and period")
)
