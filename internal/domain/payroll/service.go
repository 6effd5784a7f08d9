package payroll

import "context"

type PayrollService interface {
	// Periods
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) (ListPeriodResponse, error)
	UpdatePeriod(ctx context.Context, req UpdatePeriodRequest) (PeriodResponse, error)
	DeletePeriod(ctx context.Context, id string) error

	// Lifecycle
	GenerateItems(ctx context.Context, periodID string) (GenerateResponse, error)
	ProcessPayroll(ctx context.Context, periodID string) (ProcessResponse, error)
	MarkPayrollPaid(ctx context.Context, periodID string) (MarkPaidResponse, error)

	// Items
	ListItems(ctx context.Context, filter ItemFilter) (ListItemResponse, error)
}
