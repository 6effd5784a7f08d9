package export

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

var registerColumns = []struct {
	title string
	width float64
}{
	{"Code", 25},
	{"Employee", 55},
	{"Method", 28},
	{"Gross", 32},
	{"PAYE", 30},
	{"NSSF 5%", 30},
	{"NSSF 10%", 30},
	{"Net", 32},
	{"Status", 15},
}

// WriteRegisterPDF renders a landscape payroll register for one period.
func WriteRegisterPDF(w io.Writer, period payroll.PeriodResponse, items []payroll.ItemResponse) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Payroll register "+period.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payroll Register")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s (%s to %s)", period.Name, period.StartDate, period.EndDate))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s    Currency: %s", period.Status, period.Currency))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range registerColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	var gross, tax, employeeNssf, employerNssf, net decimal.Decimal

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		cells := []string{
			value(item.EmployeeCode),
			value(item.EmployeeName),
			item.PaymentMethod,
			item.BasicSalary.StringFixed(2),
			item.TaxAmount.StringFixed(2),
			item.NssfEmployeeContribution.StringFixed(2),
			item.NssfEmployerContribution.StringFixed(2),
			item.NetSalary.StringFixed(2),
			item.Status,
		}
		for i, col := range registerColumns {
			align := "L"
			if i >= 3 && i <= 7 {
				align = "R"
			}
			pdf.CellFormat(col.width, 6, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)

		gross = gross.Add(item.BasicSalary)
		tax = tax.Add(item.TaxAmount)
		employeeNssf = employeeNssf.Add(item.NssfEmployeeContribution)
		employerNssf = employerNssf.Add(item.NssfEmployerContribution)
		net = net.Add(item.NetSalary)
	}

	pdf.SetFont("Helvetica", "B", 9)
	totals := []string{gross.StringFixed(2), tax.StringFixed(2), employeeNssf.StringFixed(2), employerNssf.StringFixed(2), net.StringFixed(2)}
	labelWidth := registerColumns[0].width + registerColumns[1].width + registerColumns[2].width
	pdf.CellFormat(labelWidth, 7, fmt.Sprintf("Totals (%d employees)", len(items)), "1", 0, "L", false, 0, "")
	for i, total := range totals {
		pdf.CellFormat(registerColumns[i+3].width, 7, total, "1", 0, "R", false, 0, "")
	}
	pdf.CellFormat(registerColumns[8].width, 7, "", "1", 0, "", false, 0, "")
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render payroll register: %w", err)
	}
	return nil
}
