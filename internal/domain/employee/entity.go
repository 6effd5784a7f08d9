package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                  string
	EmployeeCode        string
	FullName            string
	DepartmentName      *string
	PositionName        *string
	NssfNumber          *string
	BaseSalary          decimal.Decimal
	IsActive            bool
	PaymentMethod       PaymentMethod
	BankName            *string
	BankAccountNumber   *string
	MobileMoneyProvider *string
	MobileMoneyNumber   *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type PaymentMethod string

const (
	PaymentMethodBank        PaymentMethod = "bank"
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
	PaymentMethodCash        PaymentMethod = "cash"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBank, PaymentMethodMobileMoney, PaymentMethodCash:
		return true
	}
	return false
}
