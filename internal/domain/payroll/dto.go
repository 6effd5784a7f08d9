package payroll

import (
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Name        string  `json:"name"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Currency    string  `json:"currency,omitempty"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	errs = append(errs, validateDates(r.StartDate, r.EndDate, r.PaymentDate)...)
	if r.Currency != "" && !validator.IsValidCurrency(r.Currency) {
		errs = append(errs, validator.ValidationError{Field: "currency", Message: "must be a 3-letter uppercase code"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePeriodRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}

func (r *UpdatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must not be empty"})
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.PaymentDate != nil && *r.PaymentDate != "" {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.Currency != nil && !validator.IsValidCurrency(*r.Currency) {
		errs = append(errs, validator.ValidationError{Field: "currency", Message: "must be a 3-letter uppercase code"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDates(start, end string, payment *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startDate, startOK := validator.IsValidDate(start)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
	}
	endDate, endOK := validator.IsValidDate(end)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be on or after start_date"})
	}
	if payment != nil && *payment != "" {
		paymentDate, ok := validator.IsValidDate(*payment)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be in YYYY-MM-DD format"})
		} else if endOK && paymentDate.Before(endDate) {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be on or after end_date"})
		}
	}

	return errs
}

type PeriodResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	PaymentDate *string         `json:"payment_date,omitempty"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ItemCount   int             `json:"item_count"`
	TotalGross  decimal.Decimal `json:"total_gross"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	TotalNet    decimal.Decimal `json:"total_net"`
	CreatedBy   *string         `json:"created_by,omitempty"`
	ProcessedAt *string         `json:"processed_at,omitempty"`
	PaidAt      *string         `json:"paid_at,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type PeriodFilter struct {
	Status *string
	Search *string
	Page   int
	Limit  int
}

func (f *PeriodFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !PeriodStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft', 'processing' or 'paid'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPeriodResponse struct {
	Data       []PeriodResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ========== LIFECYCLE DTOs ==========

type GenerateResponse struct {
	PeriodID     string `json:"period_id"`
	CreatedCount int    `json:"created_count"`
	SkippedCount int    `json:"skipped_count"`
	ItemCount    int    `json:"item_count"`
	Empty        bool   `json:"empty"`
}

type ProcessResponse struct {
	PeriodID       string `json:"period_id"`
	Status         string `json:"status"`
	ProcessedCount int    `json:"processed_count"`
}

type MarkPaidResponse struct {
	PeriodID  string `json:"period_id"`
	Status    string `json:"status"`
	PaidCount int    `json:"paid_count"`
	PaidAt    string `json:"paid_at"`
}

// ========== ITEM DTOs ==========

type ItemFilter struct {
	PeriodID      string
	Search        *string
	Status        *string
	PaymentMethod *string
}

func (f *ItemFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.PeriodID) {
		errs = append(errs, validator.ValidationError{Field: "period_id", Message: "is required"})
	}
	if f.Status != nil && !ItemStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft', 'processed' or 'paid'"})
	}
	if f.PaymentMethod != nil && !employee.PaymentMethod(*f.PaymentMethod).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "payment_method", Message: "must be 'bank', 'mobile_money' or 'cash'"})
	}
	if f.Search != nil {
		trimmed := strings.TrimSpace(*f.Search)
		if trimmed == "" {
			f.Search = nil
		} else {
			f.Search = &trimmed
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ItemResponse struct {
	ID                       string          `json:"id"`
	PeriodID                 string          `json:"period_id"`
	EmployeeID               string          `json:"employee_id"`
	EmployeeName             *string         `json:"employee_name,omitempty"`
	EmployeeCode             *string         `json:"employee_code,omitempty"`
	DepartmentName           *string         `json:"department_name,omitempty"`
	PositionName             *string         `json:"position_name,omitempty"`
	BasicSalary              decimal.Decimal `json:"basic_salary"`
	TaxAmount                decimal.Decimal `json:"tax_amount"`
	NetSalary                decimal.Decimal `json:"net_salary"`
	NssfEmployeeContribution decimal.Decimal `json:"nssf_employee_contribution"`
	NssfEmployerContribution decimal.Decimal `json:"nssf_employer_contribution"`
	PaymentMethod            string          `json:"payment_method"`
	BankName                 *string         `json:"bank_name,omitempty"`
	BankAccountNumber        *string         `json:"bank_account_number,omitempty"`
	MobileMoneyProvider      *string         `json:"mobile_money_provider,omitempty"`
	MobileMoneyNumber        *string         `json:"mobile_money_number,omitempty"`
	Status                   string          `json:"status"`
	PaidAt                   *string         `json:"paid_at,omitempty"`
}

type ListItemResponse struct {
	Data       []ItemResponse `json:"data"`
	TotalCount int            `json:"total_count"`
}
