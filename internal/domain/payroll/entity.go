package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft      PeriodStatus = "draft"
	PeriodStatusProcessing PeriodStatus = "processing"
	PeriodStatusPaid       PeriodStatus = "paid"
)

func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusProcessing, PeriodStatusPaid:
		return true
	}
	return false
}

// ItemStatus enum
type ItemStatus string

const (
	ItemStatusDraft     ItemStatus = "draft"
	ItemStatusProcessed ItemStatus = "processed"
	ItemStatusPaid      ItemStatus = "paid"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusDraft, ItemStatusProcessed, ItemStatusPaid:
		return true
	}
	return false
}

// Period - A payroll run over a date range
type Period struct {
	ID          string
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	PaymentDate *time.Time
	Currency    string
	Status      PeriodStatus
	CreatedBy   *string
	ProcessedAt *time.Time
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Aggregated from items
	ItemCount  int
	TotalGross decimal.Decimal
	TotalTax   decimal.Decimal
	TotalNet   decimal.Decimal
}

// Item - One employee's line in a period. Salary and payment details are
// copied from the employee at generation time.
type Item struct {
	ID                       string
	PeriodID                 string
	EmployeeID               string
	BasicSalary              decimal.Decimal
	TaxAmount                decimal.Decimal
	NetSalary                decimal.Decimal
	NssfEmployeeContribution decimal.Decimal
	NssfEmployerContribution decimal.Decimal
	PaymentMethod            employee.PaymentMethod
	BankName                 *string
	BankAccountNumber        *string
	MobileMoneyProvider      *string
	MobileMoneyNumber        *string
	Status                   ItemStatus
	PaidAt                   *time.Time
	PaidBy                   *string
	CreatedAt                time.Time
	UpdatedAt                time.Time

	// Joined fields
	EmployeeName   *string
	EmployeeCode   *string
	DepartmentName *string
	PositionName   *string
}
