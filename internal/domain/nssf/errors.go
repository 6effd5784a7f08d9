package nssf

import "errors"

var (
	ErrInvalidSalary           = errors.New("gross salary must be greater than zero")
	ErrContributionNotFound    = errors.New("nssf contribution not found")
	ErrContributionExists      = errors.New("nssf contribution already exists for this employee and period")
	ErrContributionPaid        = errors.New("nssf contribution already paid, cannot modify")
	ErrInvalidStatusTransition = errors.New("invalid nssf status transition")
	ErrConcurrentModification  = errors.New("nssf contribution was modified concurrently, retry")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrPeriodNotFound          = errors.New("payroll period not found")
)
