package nssf

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ContributionStatus enum
type ContributionStatus string

const (
	StatusPending   ContributionStatus = "pending"
	StatusProcessed ContributionStatus = "processed"
	StatusPaid      ContributionStatus = "paid"
)

func (s ContributionStatus) rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusProcessed:
		return 2
	case StatusPaid:
		return 3
	}
	return 0
}

func (s ContributionStatus) IsValid() bool {
	return s.rank() > 0
}

// CanAdvance allows any strictly forward move, including pending to paid.
func CanAdvance(from, to ContributionStatus) error {
	if !to.IsValid() || to.rank() <= from.rank() {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, from, to)
	}
	return nil
}

// CanEdit reports whether amounts or the NSSF number may still change.
func CanEdit(s ContributionStatus) error {
	if s == StatusPaid {
		return ErrContributionPaid
	}
	return nil
}

type Contribution struct {
	ID                   string
	EmployeeID           string
	PayrollPeriodID      string
	GrossSalary          decimal.Decimal
	EmployeeContribution decimal.Decimal
	EmployerContribution decimal.Decimal
	TotalContribution    decimal.Decimal
	NssfNumber           string
	Status               ContributionStatus
	ProcessedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	PeriodName   *string
}

// Recalculate sets gross and all derived amounts together.
func (c *Contribution) Recalculate(gross decimal.Decimal) error {
	amounts, err := Compute(gross)
	if err != nil {
		return err
	}
	c.GrossSalary = gross
	c.EmployeeContribution = amounts.Employee
	c.EmployerContribution = amounts.Employer
	c.TotalContribution = amounts.Total
	return nil
}
