package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll periods and items.
// Status-changing methods are compare-and-swap: they only apply while the
// stored status equals the expected one and report ErrConcurrentModification
// otherwise.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period Period) (Period, error)
	GetPeriodByID(ctx context.Context, id string) (Period, error)
	// LockPeriod reads a period and, inside a transaction, holds its row
	// lock until commit.
	LockPeriod(ctx context.Context, id string) (Period, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]Period, int64, error)
	UpdatePeriod(ctx context.Context, period Period) (Period, error)
	TransitionPeriod(ctx context.Context, id string, from, to PeriodStatus, at time.Time) error
	DeletePeriod(ctx context.Context, id string, expected PeriodStatus) error

	// Items
	CreateItem(ctx context.Context, item Item) (Item, error)
	GetEmployeeIDsInPeriod(ctx context.Context, periodID string) (map[string]struct{}, error)
	CountItems(ctx context.Context, periodID string) (int, error)
	TransitionItems(ctx context.Context, periodID string, from, to ItemStatus, paidAt *time.Time, paidBy *string) (int, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]Item, error)
}
