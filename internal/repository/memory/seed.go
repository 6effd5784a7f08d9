package memory

import (
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type employeeRow struct {
	ID                  string `csv:"id"`
	EmployeeCode        string `csv:"employee_code"`
	FullName            string `csv:"full_name"`
	Department          string `csv:"department"`
	Position            string `csv:"position"`
	NssfNumber          string `csv:"nssf_number"`
	BaseSalary          string `csv:"base_salary"`
	IsActive            bool   `csv:"is_active"`
	PaymentMethod       string `csv:"payment_method"`
	BankName            string `csv:"bank_name"`
	BankAccountNumber   string `csv:"bank_account_number"`
	MobileMoneyProvider string `csv:"mobile_money_provider"`
	MobileMoneyNumber   string `csv:"mobile_money_number"`
}

// LoadEmployeesCSV parses an employee directory export. It is used to seed
// the in-memory store for local runs.
func LoadEmployeesCSV(r io.Reader) ([]employee.Employee, error) {
	var rows []employeeRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse employee csv: %w", err)
	}

	employees := make([]employee.Employee, 0, len(rows))
	for i, row := range rows {
		salary := decimal.Zero
		if s := strings.TrimSpace(row.BaseSalary); s != "" {
			parsed, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid base_salary %q: %w", i+2, row.BaseSalary, err)
			}
			salary = parsed
		}

		method := employee.PaymentMethod(strings.TrimSpace(row.PaymentMethod))
		if !method.IsValid() {
			return nil, fmt.Errorf("row %d: invalid payment_method %q", i+2, row.PaymentMethod)
		}

		employees = append(employees, employee.Employee{
			ID:                  strings.TrimSpace(row.ID),
			EmployeeCode:        strings.TrimSpace(row.EmployeeCode),
			FullName:            strings.TrimSpace(row.FullName),
			DepartmentName:      optional(row.Department),
			PositionName:        optional(row.Position),
			NssfNumber:          optional(row.NssfNumber),
			BaseSalary:          salary,
			IsActive:            row.IsActive,
			PaymentMethod:       method,
			BankName:            optional(row.BankName),
			BankAccountNumber:   optional(row.BankAccountNumber),
			MobileMoneyProvider: optional(row.MobileMoneyProvider),
			MobileMoneyNumber:   optional(row.MobileMoneyNumber),
		})
	}

	return employees, nil
}

// Seed stores every employee, keeping the given IDs when present.
func (s *Store) Seed(employees []employee.Employee) {
	for _, e := range employees {
		s.PutEmployee(e)
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
