package export

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/gocarina/gocsv"
)

type itemRow struct {
	EmployeeCode             string `csv:"employee_code"`
	EmployeeName             string `csv:"employee_name"`
	Department               string `csv:"department"`
	Position                 string `csv:"position"`
	BasicSalary              string `csv:"basic_salary"`
	TaxAmount                string `csv:"tax_amount"`
	NssfEmployeeContribution string `csv:"nssf_employee"`
	NssfEmployerContribution string `csv:"nssf_employer"`
	NetSalary                string `csv:"net_salary"`
	PaymentMethod            string `csv:"payment_method"`
	BankName                 string `csv:"bank_name"`
	BankAccountNumber        string `csv:"bank_account_number"`
	MobileMoneyProvider      string `csv:"mobile_money_provider"`
	MobileMoneyNumber        string `csv:"mobile_money_number"`
	Status                   string `csv:"status"`
	PaidAt                   string `csv:"paid_at"`
}

// WriteItemsCSV writes one row per payroll item with a header line.
// Amounts keep two decimal places.
func WriteItemsCSV(w io.Writer, items []payroll.ItemResponse) error {
	rows := make([]*itemRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, &itemRow{
			EmployeeCode:             value(item.EmployeeCode),
			EmployeeName:             value(item.EmployeeName),
			Department:               value(item.DepartmentName),
			Position:                 value(item.PositionName),
			BasicSalary:              item.BasicSalary.StringFixed(2),
			TaxAmount:                item.TaxAmount.StringFixed(2),
			NssfEmployeeContribution: item.NssfEmployeeContribution.StringFixed(2),
			NssfEmployerContribution: item.NssfEmployerContribution.StringFixed(2),
			NetSalary:                item.NetSalary.StringFixed(2),
			PaymentMethod:            item.PaymentMethod,
			BankName:                 value(item.BankName),
			BankAccountNumber:        value(item.BankAccountNumber),
			MobileMoneyProvider:      value(item.MobileMoneyProvider),
			MobileMoneyNumber:        value(item.MobileMoneyNumber),
			Status:                   item.Status,
			PaidAt:                   value(item.PaidAt),
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write payroll items csv: %w", err)
	}
	return nil
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
