package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
)

type contributionRepository struct {
	store *Store
}

func NewContributionRepository(store *Store) nssf.ContributionRepository {
	return &contributionRepository{store: store}
}

func (r *contributionRepository) Create(ctx context.Context, c nssf.Contribution) (nssf.Contribution, error) {
	var created nssf.Contribution
	err := r.store.write(ctx, func() error {
		if _, ok := r.store.periods[c.PayrollPeriodID]; !ok {
			return nssf.ErrPeriodNotFound
		}
		if _, ok := r.store.employees[c.EmployeeID]; !ok {
			return nssf.ErrEmployeeNotFound
		}
		for _, existing := range r.store.contributions {
			if existing.EmployeeID == c.EmployeeID && existing.PayrollPeriodID == c.PayrollPeriodID {
				return nssf.ErrContributionExists
			}
		}
		now := time.Now()
		c.ID = newID()
		c.CreatedAt = now
		c.UpdatedAt = now
		r.store.contributions[c.ID] = c
		created = r.joined(c)
		return nil
	})
	return created, err
}

func (r *contributionRepository) GetByID(ctx context.Context, id string) (nssf.Contribution, error) {
	var (
		c  nssf.Contribution
		ok bool
	)
	r.store.read(ctx, func() {
		c, ok = r.store.contributions[id]
		if ok {
			c = r.joined(c)
		}
	})
	if !ok {
		return nssf.Contribution{}, nssf.ErrContributionNotFound
	}
	return c, nil
}

func (r *contributionRepository) List(ctx context.Context, filter nssf.ContributionFilter) ([]nssf.Contribution, int64, error) {
	var result []nssf.Contribution
	r.store.read(ctx, func() {
		for _, c := range r.store.contributions {
			if filter.PayrollPeriodID != nil && c.PayrollPeriodID != *filter.PayrollPeriodID {
				continue
			}
			if filter.EmployeeID != nil && c.EmployeeID != *filter.EmployeeID {
				continue
			}
			if filter.Status != nil && string(c.Status) != *filter.Status {
				continue
			}
			c = r.joined(c)
			if filter.Search != nil &&
				!containsFold(deref(c.EmployeeName), *filter.Search) &&
				!containsFold(deref(c.EmployeeCode), *filter.Search) &&
				!containsFold(c.NssfNumber, *filter.Search) {
				continue
			}
			result = append(result, c)
		}
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	total := int64(len(result))
	return paginate(result, filter.Page, filter.Limit), total, nil
}

func (r *contributionRepository) Update(ctx context.Context, c nssf.Contribution, expected nssf.ContributionStatus) (nssf.Contribution, error) {
	var updated nssf.Contribution
	err := r.store.write(ctx, func() error {
		current, ok := r.store.contributions[c.ID]
		if !ok {
			return nssf.ErrContributionNotFound
		}
		if current.Status != expected {
			return nssf.ErrConcurrentModification
		}
		current.GrossSalary = c.GrossSalary
		current.EmployeeContribution = c.EmployeeContribution
		current.EmployerContribution = c.EmployerContribution
		current.TotalContribution = c.TotalContribution
		current.NssfNumber = c.NssfNumber
		current.UpdatedAt = time.Now()
		r.store.contributions[c.ID] = current
		updated = r.joined(current)
		return nil
	})
	return updated, err
}

func (r *contributionRepository) UpdateStatus(ctx context.Context, id string, expected, target nssf.ContributionStatus, processedAt time.Time) (nssf.Contribution, error) {
	var updated nssf.Contribution
	err := r.store.write(ctx, func() error {
		current, ok := r.store.contributions[id]
		if !ok {
			return nssf.ErrContributionNotFound
		}
		if current.Status != expected {
			return nssf.ErrConcurrentModification
		}
		current.Status = target
		current.ProcessedAt = &processedAt
		current.UpdatedAt = processedAt
		r.store.contributions[id] = current
		updated = r.joined(current)
		return nil
	})
	return updated, err
}

func (r *contributionRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func() error {
		if _, ok := r.store.contributions[id]; !ok {
			return nssf.ErrContributionNotFound
		}
		delete(r.store.contributions, id)
		return nil
	})
}

// joined fills display fields. Callers hold the store lock.
func (r *contributionRepository) joined(c nssf.Contribution) nssf.Contribution {
	if emp, ok := r.store.employees[c.EmployeeID]; ok {
		name, code := emp.FullName, emp.EmployeeCode
		c.EmployeeName = &name
		c.EmployeeCode = &code
	}
	if p, ok := r.store.periods[c.PayrollPeriodID]; ok {
		name := p.Name
		c.PeriodName = &name
	}
	return c
}
