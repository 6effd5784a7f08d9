package postgresql_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDraftPeriod(t *testing.T, repo payroll.PayrollRepository) payroll.Period {
	t.Helper()

	period, err := repo.CreatePeriod(context.Background(), payroll.Period{
		Name:      "January 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Currency:  "UGX",
		Status:    payroll.PeriodStatusDraft,
	})
	require.NoError(t, err)
	require.NotEmpty(t, period.ID)

	return period
}

func TestPayrollRepository_PeriodLifecycle(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)

	setup.InsertEmployee(t, "emp-1", "EMP-001", "Amina Nakato", decimal.NewFromInt(5000000))
	period := createDraftPeriod(t, repo)

	item, err := repo.CreateItem(ctx, payroll.Item{
		PeriodID:                 period.ID,
		EmployeeID:               "emp-1",
		BasicSalary:              decimal.NewFromInt(5000000),
		TaxAmount:                decimal.NewFromInt(1402000),
		NetSalary:                decimal.NewFromInt(3348000),
		NssfEmployeeContribution: decimal.NewFromInt(250000),
		NssfEmployerContribution: decimal.NewFromInt(500000),
		PaymentMethod:            "bank",
		Status:                   payroll.ItemStatusDraft,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	_, err = repo.CreateItem(ctx, payroll.Item{PeriodID: period.ID, EmployeeID: "emp-1", PaymentMethod: "bank", Status: payroll.ItemStatusDraft})
	assert.ErrorIs(t, err, payroll.ErrDuplicateItem)

	got, err := repo.GetPeriodByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ItemCount)
	assert.True(t, got.TotalGross.Equal(decimal.NewFromInt(5000000)))

	now := time.Now().UTC()
	require.NoError(t, repo.TransitionPeriod(ctx, period.ID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing, now))
	assert.ErrorIs(t, repo.TransitionPeriod(ctx, period.ID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing, now), payroll.ErrConcurrentModification)

	n, err := repo.TransitionItems(ctx, period.ID, payroll.ItemStatusDraft, payroll.ItemStatusProcessed, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	paidBy := "user-1"
	require.NoError(t, repo.TransitionPeriod(ctx, period.ID, payroll.PeriodStatusProcessing, payroll.PeriodStatusPaid, now))
	n, err = repo.TransitionItems(ctx, period.ID, payroll.ItemStatusProcessed, payroll.ItemStatusPaid, &now, &paidBy)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := repo.ListItems(ctx, payroll.ItemFilter{PeriodID: period.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, payroll.ItemStatusPaid, items[0].Status)
	require.NotNil(t, items[0].PaidAt)
	require.NotNil(t, items[0].EmployeeName)
	assert.Equal(t, "Amina Nakato", *items[0].EmployeeName)

	assert.ErrorIs(t, repo.DeletePeriod(ctx, period.ID, payroll.PeriodStatusDraft), payroll.ErrConcurrentModification)
	assert.ErrorIs(t, repo.DeletePeriod(ctx, "missing", payroll.PeriodStatusDraft), payroll.ErrPeriodNotFound)
}

func TestPayrollRepository_LockPeriodSerializesTransitions(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	period := createDraftPeriod(t, repo)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tx.WithinTransaction(ctx, func(ctx context.Context) error {
				current, err := repo.LockPeriod(ctx, period.ID)
				if err != nil {
					return err
				}
				if current.Status != payroll.PeriodStatusDraft {
					return payroll.ErrInvalidPeriodState
				}
				return repo.TransitionPeriod(ctx, period.ID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing, time.Now())
			})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)
	}
	assert.Equal(t, 1, succeeded)

	got, err := repo.GetPeriodByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusProcessing, got.Status)
}

func TestGenerateItems_ConcurrentCallsNoDuplicates(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)
	svc := payrollService.NewPayrollService(
		postgresql.NewTransactor(setup.DB), repo, postgresql.NewEmployeeRepository(setup.DB),
		payroll.PAYEPolicy{}, "UGX", nil,
	)

	const employees = 20
	for i := 1; i <= employees; i++ {
		setup.InsertEmployee(t, fmt.Sprintf("emp-%02d", i), fmt.Sprintf("EMP-%03d", i), fmt.Sprintf("Employee %02d", i), decimal.NewFromInt(1000000))
	}
	period := createDraftPeriod(t, repo)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GenerateItems(ctx, period.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	count, err := repo.CountItems(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, employees, count)
}

func TestPayrollRepository_ConcurrentCreateItemKeepsOnePerEmployee(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)

	setup.InsertEmployee(t, "emp-1", "EMP-001", "Amina Nakato", decimal.NewFromInt(5000000))
	period := createDraftPeriod(t, repo)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateItem(ctx, payroll.Item{
				PeriodID:      period.ID,
				EmployeeID:    "emp-1",
				BasicSalary:   decimal.NewFromInt(5000000),
				PaymentMethod: "bank",
				Status:        payroll.ItemStatusDraft,
			})
		}(i)
	}
	wg.Wait()

	var created int
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, payroll.ErrDuplicateItem)
	}
	assert.Equal(t, 1, created)

	count, err := repo.CountItems(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestContributionRepository_CRUD(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	periods := postgresql.NewPayrollRepository(setup.DB)
	repo := postgresql.NewContributionRepository(setup.DB)

	setup.InsertEmployee(t, "emp-1", "EMP-001", "Amina Nakato", decimal.NewFromInt(5000000))
	period := createDraftPeriod(t, periods)

	c := nssf.Contribution{EmployeeID: "emp-1", PayrollPeriodID: period.ID, NssfNumber: "NS-EMP-001", Status: nssf.StatusPending}
	require.NoError(t, c.Recalculate(decimal.NewFromInt(5000000)))

	created, err := repo.Create(ctx, c)
	require.NoError(t, err)
	assert.True(t, created.TotalContribution.Equal(decimal.NewFromInt(750000)))
	require.NotNil(t, created.EmployeeName)
	assert.Equal(t, "Amina Nakato", *created.EmployeeName)

	_, err = repo.Create(ctx, c)
	assert.ErrorIs(t, err, nssf.ErrContributionExists)

	missing := c
	missing.EmployeeID = "nobody"
	_, err = repo.Create(ctx, missing)
	assert.ErrorIs(t, err, nssf.ErrEmployeeNotFound)

	updated, err := repo.UpdateStatus(ctx, created.ID, nssf.StatusPending, nssf.StatusProcessed, time.Now())
	require.NoError(t, err)
	assert.Equal(t, nssf.StatusProcessed, updated.Status)
	assert.NotNil(t, updated.ProcessedAt)

	_, err = repo.UpdateStatus(ctx, created.ID, nssf.StatusPending, nssf.StatusPaid, time.Now())
	assert.ErrorIs(t, err, nssf.ErrConcurrentModification)

	search := "amina"
	list, total, err := repo.List(ctx, nssf.ContributionFilter{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	// contributions pin their period
	assert.ErrorIs(t, periods.DeletePeriod(ctx, period.ID, payroll.PeriodStatusDraft), payroll.ErrPeriodHasContributions)
	_, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), nssf.ErrContributionNotFound)
	require.NoError(t, periods.DeletePeriod(ctx, period.ID, payroll.PeriodStatusDraft))
}

func TestMigrate_Idempotent(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	// second run finds every version recorded
	require.NoError(t, database.Migrate(ctx, setup.DB, nil))
}
