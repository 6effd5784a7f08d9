package nssf

import (
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateContributionRequest struct {
	EmployeeID      string `json:"employee_id"`
	PayrollPeriodID string `json:"payroll_period_id"`
	NssfNumber      string `json:"nssf_number"`
}

func (r *CreateContributionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.PayrollPeriodID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_period_id", Message: "is required"})
	}
	if validator.IsEmpty(r.NssfNumber) {
		errs = append(errs, validator.ValidationError{Field: "nssf_number", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateContributionRequest struct {
	ID          string           `json:"-"`
	GrossSalary *decimal.Decimal `json:"gross_salary,omitempty"`
	NssfNumber  *string          `json:"nssf_number,omitempty"`
}

func (r *UpdateContributionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.GrossSalary != nil && !r.GrossSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "gross_salary", Message: "must be greater than zero"})
	}
	if r.NssfNumber != nil && validator.IsEmpty(*r.NssfNumber) {
		errs = append(errs, validator.ValidationError{Field: "nssf_number", Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	status := ContributionStatus(strings.TrimSpace(r.Status))
	if status != StatusProcessed && status != StatusPaid {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'processed' or 'paid'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ContributionFilter struct {
	PayrollPeriodID *string
	EmployeeID      *string
	Status          *string
	Search          *string
	Page            int
	Limit           int
}

func (f *ContributionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !ContributionStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'pending', 'processed' or 'paid'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ContributionResponse struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	EmployeeName         *string         `json:"employee_name,omitempty"`
	EmployeeCode         *string         `json:"employee_code,omitempty"`
	PayrollPeriodID      string          `json:"payroll_period_id"`
	PeriodName           *string         `json:"period_name,omitempty"`
	GrossSalary          decimal.Decimal `json:"gross_salary"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	TotalContribution    decimal.Decimal `json:"total_contribution"`
	NssfNumber           string          `json:"nssf_number"`
	Status               string          `json:"status"`
	ProcessedAt          *string         `json:"processed_at,omitempty"`
	CreatedAt            string          `json:"created_at"`
	UpdatedAt            string          `json:"updated_at"`
}

type ListContributionResponse struct {
	Data       []ContributionResponse `json:"data"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}

type CalculationResponse struct {
	GrossSalary          decimal.Decimal `json:"gross_salary"`
	EmployeeRate         decimal.Decimal `json:"employee_rate"`
	EmployerRate         decimal.Decimal `json:"employer_rate"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	TotalContribution    decimal.Decimal `json:"total_contribution"`
}
