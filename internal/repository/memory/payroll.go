package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	store *Store
}

func NewPayrollRepository(store *Store) payroll.PayrollRepository {
	return &payrollRepository{store: store}
}

// ========== PERIODS ==========

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	var created payroll.Period
	err := r.store.write(ctx, func() error {
		now := time.Now()
		period.ID = newID()
		period.CreatedAt = now
		period.UpdatedAt = now
		r.store.periods[period.ID] = period
		created = r.withTotals(period)
		return nil
	})
	return created, err
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string) (payroll.Period, error) {
	var (
		period payroll.Period
		ok     bool
	)
	r.store.read(ctx, func() {
		period, ok = r.store.periods[id]
		if ok {
			period = r.withTotals(period)
		}
	})
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return period, nil
}

// LockPeriod relies on the store's writer lock held by WithinTransaction.
func (r *payrollRepository) LockPeriod(ctx context.Context, id string) (payroll.Period, error) {
	return r.GetPeriodByID(ctx, id)
}

func (r *payrollRepository) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.Period, int64, error) {
	var periods []payroll.Period
	r.store.read(ctx, func() {
		for _, p := range r.store.periods {
			if filter.Status != nil && string(p.Status) != *filter.Status {
				continue
			}
			if filter.Search != nil && !containsFold(p.Name, *filter.Search) {
				continue
			}
			periods = append(periods, r.withTotals(p))
		}
	})

	sort.Slice(periods, func(i, j int) bool {
		if periods[i].StartDate.Equal(periods[j].StartDate) {
			return periods[i].ID > periods[j].ID
		}
		return periods[i].StartDate.After(periods[j].StartDate)
	})

	total := int64(len(periods))
	return paginate(periods, filter.Page, filter.Limit), total, nil
}

func (r *payrollRepository) UpdatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	var updated payroll.Period
	err := r.store.write(ctx, func() error {
		current, ok := r.store.periods[period.ID]
		if !ok {
			return payroll.ErrPeriodNotFound
		}
		current.Name = period.Name
		current.StartDate = period.StartDate
		current.EndDate = period.EndDate
		current.PaymentDate = period.PaymentDate
		current.Currency = period.Currency
		current.UpdatedAt = time.Now()
		r.store.periods[current.ID] = current
		updated = r.withTotals(current)
		return nil
	})
	return updated, err
}

func (r *payrollRepository) TransitionPeriod(ctx context.Context, id string, from, to payroll.PeriodStatus, at time.Time) error {
	return r.store.write(ctx, func() error {
		current, ok := r.store.periods[id]
		if !ok {
			return payroll.ErrPeriodNotFound
		}
		if current.Status != from {
			return payroll.ErrConcurrentModification
		}
		current.Status = to
		switch to {
		case payroll.PeriodStatusProcessing:
			current.ProcessedAt = &at
		case payroll.PeriodStatusPaid:
			current.PaidAt = &at
		}
		current.UpdatedAt = at
		r.store.periods[id] = current
		return nil
	})
}

func (r *payrollRepository) DeletePeriod(ctx context.Context, id string, expected payroll.PeriodStatus) error {
	return r.store.write(ctx, func() error {
		current, ok := r.store.periods[id]
		if !ok {
			return payroll.ErrPeriodNotFound
		}
		if current.Status != expected {
			return payroll.ErrConcurrentModification
		}
		for _, c := range r.store.contributions {
			if c.PayrollPeriodID == id {
				return payroll.ErrPeriodHasContributions
			}
		}
		delete(r.store.periods, id)
		for itemID, item := range r.store.items {
			if item.PeriodID == id {
				delete(r.store.items, itemID)
			}
		}
		return nil
	})
}

// ========== ITEMS ==========

func (r *payrollRepository) CreateItem(ctx context.Context, item payroll.Item) (payroll.Item, error) {
	var created payroll.Item
	err := r.store.write(ctx, func() error {
		if _, ok := r.store.periods[item.PeriodID]; !ok {
			return payroll.ErrPeriodNotFound
		}
		for _, existing := range r.store.items {
			if existing.PeriodID == item.PeriodID && existing.EmployeeID == item.EmployeeID {
				return payroll.ErrDuplicateItem
			}
		}
		now := time.Now()
		item.ID = newID()
		item.CreatedAt = now
		item.UpdatedAt = now
		r.store.items[item.ID] = item
		created = item
		return nil
	})
	return created, err
}

func (r *payrollRepository) GetEmployeeIDsInPeriod(ctx context.Context, periodID string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	r.store.read(ctx, func() {
		for _, item := range r.store.items {
			if item.PeriodID == periodID {
				ids[item.EmployeeID] = struct{}{}
			}
		}
	})
	return ids, nil
}

func (r *payrollRepository) CountItems(ctx context.Context, periodID string) (int, error) {
	var count int
	r.store.read(ctx, func() {
		for _, item := range r.store.items {
			if item.PeriodID == periodID {
				count++
			}
		}
	})
	return count, nil
}

func (r *payrollRepository) TransitionItems(ctx context.Context, periodID string, from, to payroll.ItemStatus, paidAt *time.Time, paidBy *string) (int, error) {
	var count int
	err := r.store.write(ctx, func() error {
		now := time.Now()
		for id, item := range r.store.items {
			if item.PeriodID != periodID || item.Status != from {
				continue
			}
			item.Status = to
			if paidAt != nil {
				at := *paidAt
				item.PaidAt = &at
				item.PaidBy = paidBy
			}
			item.UpdatedAt = now
			r.store.items[id] = item
			count++
		}
		return nil
	})
	return count, err
}

func (r *payrollRepository) ListItems(ctx context.Context, filter payroll.ItemFilter) ([]payroll.Item, error) {
	var items []payroll.Item
	r.store.read(ctx, func() {
		for _, item := range r.store.items {
			if item.PeriodID != filter.PeriodID {
				continue
			}
			if filter.Status != nil && string(item.Status) != *filter.Status {
				continue
			}
			if filter.PaymentMethod != nil && string(item.PaymentMethod) != *filter.PaymentMethod {
				continue
			}

			if emp, ok := r.store.employees[item.EmployeeID]; ok {
				name, code := emp.FullName, emp.EmployeeCode
				item.EmployeeName = &name
				item.EmployeeCode = &code
				item.DepartmentName = emp.DepartmentName
				item.PositionName = emp.PositionName
			}

			if filter.Search != nil && !matchesEmployee(item, *filter.Search) {
				continue
			}
			items = append(items, item)
		}
	})

	sort.Slice(items, func(i, j int) bool {
		return deref(items[i].EmployeeName) < deref(items[j].EmployeeName)
	})

	return items, nil
}

// withTotals fills the aggregated fields. Callers hold the store lock.
func (r *payrollRepository) withTotals(p payroll.Period) payroll.Period {
	p.ItemCount = 0
	p.TotalGross = decimal.Zero
	p.TotalTax = decimal.Zero
	p.TotalNet = decimal.Zero
	for _, item := range r.store.items {
		if item.PeriodID != p.ID {
			continue
		}
		p.ItemCount++
		p.TotalGross = p.TotalGross.Add(item.BasicSalary)
		p.TotalTax = p.TotalTax.Add(item.TaxAmount)
		p.TotalNet = p.TotalNet.Add(item.NetSalary)
	}
	return p
}

func matchesEmployee(item payroll.Item, search string) bool {
	return containsFold(deref(item.EmployeeName), search) || containsFold(deref(item.EmployeeCode), search)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func paginate[T any](rows []T, page, limit int) []T {
	if limit <= 0 {
		return rows
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
