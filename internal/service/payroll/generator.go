package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

// GenerateItems creates one draft item for every active employee that does
// not have one in the period yet. Running it again is a no-op for employees
// already covered. The period row stays locked for the whole run so
// generation cannot interleave with processing or deletion.
func (s *PayrollServiceImpl) GenerateItems(ctx context.Context, periodID string) (payroll.GenerateResponse, error) {
	result := payroll.GenerateResponse{PeriodID: periodID}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.LockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if err := payroll.CanGenerate(period); err != nil {
			return err
		}

		existing, err := s.payrollRepo.GetEmployeeIDsInPeriod(ctx, periodID)
		if err != nil {
			return err
		}

		employees, err := s.employeeRepo.GetActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to get active employees: %w", err)
		}

		for _, emp := range employees {
			if _, ok := existing[emp.ID]; ok {
				continue
			}

			item, err := s.buildItem(period, emp)
			if err != nil {
				if errors.Is(err, nssf.ErrInvalidSalary) {
					s.logger.WarnContext(ctx, "skipping employee without a valid salary",
						slog.String("period_id", periodID),
						slog.String("employee_id", emp.ID),
					)
					result.SkippedCount++
					continue
				}
				return err
			}

			if _, err := s.payrollRepo.CreateItem(ctx, item); err != nil {
				if errors.Is(err, payroll.ErrDuplicateItem) {
					continue
				}
				return fmt.Errorf("failed to create payroll item for employee %s: %w", emp.ID, err)
			}
			result.CreatedCount++
		}

		result.ItemCount, err = s.payrollRepo.CountItems(ctx, periodID)
		return err
	})
	if err != nil {
		return payroll.GenerateResponse{}, err
	}

	result.Empty = result.ItemCount == 0

	s.logger.InfoContext(ctx, "payroll items generated",
		slog.String("period_id", periodID),
		slog.Int("created_count", result.CreatedCount),
		slog.Int("skipped_count", result.SkippedCount),
		slog.Int("item_count", result.ItemCount),
	)

	return result, nil
}

// buildItem snapshots the employee's salary and payment details into a new
// draft item. Later edits to the employee do not reach existing items.
func (s *PayrollServiceImpl) buildItem(period payroll.Period, emp employee.Employee) (payroll.Item, error) {
	gross := emp.BaseSalary

	contribution, err := nssf.Compute(gross)
	if err != nil {
		return payroll.Item{}, err
	}

	tax := s.taxPolicy.Compute(gross)
	net := gross.Sub(tax).Sub(contribution.Employee)

	method := emp.PaymentMethod
	if !method.IsValid() {
		method = employee.PaymentMethodCash
	}

	return payroll.Item{
		PeriodID:                 period.ID,
		EmployeeID:               emp.ID,
		BasicSalary:              gross,
		TaxAmount:                tax,
		NetSalary:                net,
		NssfEmployeeContribution: contribution.Employee,
		NssfEmployerContribution: contribution.Employer,
		PaymentMethod:            method,
		BankName:                 copyString(emp.BankName),
		BankAccountNumber:        copyString(emp.BankAccountNumber),
		MobileMoneyProvider:      copyString(emp.MobileMoneyProvider),
		MobileMoneyNumber:        copyString(emp.MobileMoneyNumber),
		Status:                   payroll.ItemStatusDraft,
	}, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
