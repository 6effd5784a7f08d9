package payroll

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

const (
	dateLayout      = "2006-01-02"
	defaultCurrency = "UGX"
)

type PayrollServiceImpl struct {
	tx              database.Transactor
	payrollRepo     payroll.PayrollRepository
	employeeRepo    employee.EmployeeRepository
	taxPolicy       payroll.TaxPolicy
	logger          *slog.Logger
	defaultCurrency string
	now             func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	taxPolicy payroll.TaxPolicy,
	currency string,
	logger *slog.Logger,
) payroll.PayrollService {
	if logger == nil {
		logger = slog.Default()
	}
	if currency == "" {
		currency = defaultCurrency
	}
	return &PayrollServiceImpl{
		tx:              tx,
		payrollRepo:     payrollRepo,
		employeeRepo:    employeeRepo,
		taxPolicy:       taxPolicy,
		logger:          logger,
		defaultCurrency: currency,
		now:             time.Now,
	}
}

// Helper to get the operator's user_id from JWT context. Absent for internal callers.
func getUserIDFromContext(ctx context.Context) *string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return nil
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil
	}
	return &userID
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	startDate, _ := time.Parse(dateLayout, req.StartDate)
	endDate, _ := time.Parse(dateLayout, req.EndDate)

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	period := payroll.Period{
		Name:        strings.TrimSpace(req.Name),
		StartDate:   startDate,
		EndDate:     endDate,
		PaymentDate: parseOptionalDate(req.PaymentDate),
		Currency:    currency,
		Status:      payroll.PeriodStatusDraft,
		CreatedBy:   getUserIDFromContext(ctx),
	}

	created, err := s.payrollRepo.CreatePeriod(ctx, period)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll period created",
		slog.String("period_id", created.ID),
		slog.String("name", created.Name),
	)

	return mapToPeriodResponse(created), nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return mapToPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) (payroll.ListPeriodResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPeriodResponse{}, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	periods, total, err := s.payrollRepo.ListPeriods(ctx, filter)
	if err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	data := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, mapToPeriodResponse(p))
	}

	return payroll.ListPeriodResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// UpdatePeriod edits metadata only. It is allowed in every status and never
// touches generated items.
func (s *PayrollServiceImpl) UpdatePeriod(ctx context.Context, req payroll.UpdatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	var updated payroll.Period
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.payrollRepo.LockPeriod(ctx, req.ID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			current.Name = strings.TrimSpace(*req.Name)
		}
		if req.StartDate != nil {
			current.StartDate, _ = time.Parse(dateLayout, *req.StartDate)
		}
		if req.EndDate != nil {
			current.EndDate, _ = time.Parse(dateLayout, *req.EndDate)
		}
		if req.PaymentDate != nil {
			current.PaymentDate = parseOptionalDate(req.PaymentDate)
		}
		if req.Currency != nil {
			current.Currency = *req.Currency
		}

		if err := validateMergedDates(current); err != nil {
			return err
		}

		updated, err = s.payrollRepo.UpdatePeriod(ctx, current)
		return err
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return mapToPeriodResponse(updated), nil
}

func (s *PayrollServiceImpl) DeletePeriod(ctx context.Context, id string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.LockPeriod(ctx, id)
		if err != nil {
			return err
		}
		if err := payroll.CanDelete(period); err != nil {
			return err
		}
		return s.payrollRepo.DeletePeriod(ctx, id, payroll.PeriodStatusDraft)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "payroll period deleted", slog.String("period_id", id))
	return nil
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) ProcessPayroll(ctx context.Context, periodID string) (payroll.ProcessResponse, error) {
	var processed int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.LockPeriod(ctx, periodID)
		if err != nil {
			return err
		}

		count, err := s.payrollRepo.CountItems(ctx, periodID)
		if err != nil {
			return err
		}
		if err := payroll.CanProcess(period, count); err != nil {
			return err
		}

		if err := s.payrollRepo.TransitionPeriod(ctx, periodID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing, s.now()); err != nil {
			return err
		}

		processed, err = s.payrollRepo.TransitionItems(ctx, periodID, payroll.ItemStatusDraft, payroll.ItemStatusFor(payroll.PeriodStatusProcessing), nil, nil)
		return err
	})
	if err != nil {
		return payroll.ProcessResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll period processed",
		slog.String("period_id", periodID),
		slog.Int("processed_count", processed),
	)

	return payroll.ProcessResponse{
		PeriodID:       periodID,
		Status:         string(payroll.PeriodStatusProcessing),
		ProcessedCount: processed,
	}, nil
}

func (s *PayrollServiceImpl) MarkPayrollPaid(ctx context.Context, periodID string) (payroll.MarkPaidResponse, error) {
	paidAt := s.now()
	paidBy := getUserIDFromContext(ctx)

	var paid int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.LockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if err := payroll.CanMarkPaid(period); err != nil {
			return err
		}

		if err := s.payrollRepo.TransitionPeriod(ctx, periodID, payroll.PeriodStatusProcessing, payroll.PeriodStatusPaid, paidAt); err != nil {
			return err
		}

		paid, err = s.payrollRepo.TransitionItems(ctx, periodID, payroll.ItemStatusProcessed, payroll.ItemStatusFor(payroll.PeriodStatusPaid), &paidAt, paidBy)
		return err
	})
	if err != nil {
		return payroll.MarkPaidResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll period paid",
		slog.String("period_id", periodID),
		slog.Int("paid_count", paid),
	)

	return payroll.MarkPaidResponse{
		PeriodID:  periodID,
		Status:    string(payroll.PeriodStatusPaid),
		PaidCount: paid,
		PaidAt:    paidAt.Format(time.RFC3339),
	}, nil
}

// ========== ITEMS ==========

// ListItems is read-only; filters only narrow the result.
func (s *PayrollServiceImpl) ListItems(ctx context.Context, filter payroll.ItemFilter) (payroll.ListItemResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListItemResponse{}, err
	}

	if _, err := s.payrollRepo.GetPeriodByID(ctx, filter.PeriodID); err != nil {
		return payroll.ListItemResponse{}, err
	}

	items, err := s.payrollRepo.ListItems(ctx, filter)
	if err != nil {
		return payroll.ListItemResponse{}, err
	}

	data := make([]payroll.ItemResponse, 0, len(items))
	for _, item := range items {
		data = append(data, mapToItemResponse(item))
	}

	return payroll.ListItemResponse{Data: data, TotalCount: len(data)}, nil
}

// ========== HELPERS ==========

func parseOptionalDate(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil
	}
	return &t
}

func validateMergedDates(p payroll.Period) error {
	var errs validator.ValidationErrors
	if p.EndDate.Before(p.StartDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be on or after start_date"})
	}
	if p.PaymentDate != nil && p.PaymentDate.Before(p.EndDate) {
		errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be on or after end_date"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func mapToPeriodResponse(p payroll.Period) payroll.PeriodResponse {
	return payroll.PeriodResponse{
		ID:          p.ID,
		Name:        p.Name,
		StartDate:   p.StartDate.Format(dateLayout),
		EndDate:     p.EndDate.Format(dateLayout),
		PaymentDate: formatDate(p.PaymentDate),
		Currency:    p.Currency,
		Status:      string(p.Status),
		ItemCount:   p.ItemCount,
		TotalGross:  p.TotalGross,
		TotalTax:    p.TotalTax,
		TotalNet:    p.TotalNet,
		CreatedBy:   p.CreatedBy,
		ProcessedAt: formatTime(p.ProcessedAt),
		PaidAt:      formatTime(p.PaidAt),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToItemResponse(i payroll.Item) payroll.ItemResponse {
	return payroll.ItemResponse{
		ID:                       i.ID,
		PeriodID:                 i.PeriodID,
		EmployeeID:               i.EmployeeID,
		EmployeeName:             i.EmployeeName,
		EmployeeCode:             i.EmployeeCode,
		DepartmentName:           i.DepartmentName,
		PositionName:             i.PositionName,
		BasicSalary:              i.BasicSalary,
		TaxAmount:                i.TaxAmount,
		NetSalary:                i.NetSalary,
		NssfEmployeeContribution: i.NssfEmployeeContribution,
		NssfEmployerContribution: i.NssfEmployerContribution,
		PaymentMethod:            string(i.PaymentMethod),
		BankName:                 i.BankName,
		BankAccountNumber:        i.BankAccountNumber,
		MobileMoneyProvider:      i.MobileMoneyProvider,
		MobileMoneyNumber:        i.MobileMoneyNumber,
		Status:                   string(i.Status),
		PaidAt:                   formatTime(i.PaidAt),
	}
}
