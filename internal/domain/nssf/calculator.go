package nssf

import "github.com/shopspring/decimal"

// Statutory rates, fixed by law.
var (
	EmployeeRate = decimal.RequireFromString("0.05")
	EmployerRate = decimal.RequireFromString("0.10")
)

// Amounts is the result of a contribution computation.
type Amounts struct {
	Employee decimal.Decimal
	Employer decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives the employee and employer contributions for a gross salary.
// Each component is rounded to 2 decimal places, half away from zero, and the
// total is the sum of the rounded components.
func Compute(gross decimal.Decimal) (Amounts, error) {
	if !gross.IsPositive() {
		return Amounts{}, ErrInvalidSalary
	}

	employee := gross.Mul(EmployeeRate).Round(2)
	employer := gross.Mul(EmployerRate).Round(2)

	return Amounts{
		Employee: employee,
		Employer: employer,
		Total:    employee.Add(employer),
	}, nil
}

