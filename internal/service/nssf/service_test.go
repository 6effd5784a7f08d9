package nssf

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service  *ContributionServiceImpl
	periodID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.Seed([]employee.Employee{
		{ID: "emp-1", EmployeeCode: "EMP-001", FullName: "Amina Nakato", BaseSalary: decimal.NewFromInt(5000000), IsActive: true, PaymentMethod: employee.PaymentMethodBank},
		{ID: "emp-2", EmployeeCode: "EMP-002", FullName: "Brian Okello", BaseSalary: decimal.Zero, IsActive: true, PaymentMethod: employee.PaymentMethodCash},
	})

	payrollRepo := memory.NewPayrollRepository(store)
	period, err := payrollRepo.CreatePeriod(context.Background(), payroll.Period{
		Name:      "January 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Currency:  "UGX",
		Status:    payroll.PeriodStatusDraft,
	})
	require.NoError(t, err)

	svc := NewContributionService(store, memory.NewContributionRepository(store), payrollRepo, memory.NewEmployeeRepository(store), nil)
	impl, ok := svc.(*ContributionServiceImpl)
	require.True(t, ok)

	return &fixture{service: impl, periodID: period.ID}
}

func (f *fixture) create(t *testing.T) nssf.ContributionResponse {
	t.Helper()
	c, err := f.service.Create(context.Background(), nssf.CreateContributionRequest{
		EmployeeID:      "emp-1",
		PayrollPeriodID: f.periodID,
		NssfNumber:      " NS001 ",
	})
	require.NoError(t, err)
	return c
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	c := f.create(t)

	assert.Equal(t, "pending", c.Status)
	assert.Equal(t, "NS001", c.NssfNumber)
	assert.True(t, c.GrossSalary.Equal(decimal.NewFromInt(5000000)))
	assert.True(t, c.EmployeeContribution.Equal(decimal.NewFromInt(250000)))
	assert.True(t, c.EmployerContribution.Equal(decimal.NewFromInt(500000)))
	assert.True(t, c.TotalContribution.Equal(decimal.NewFromInt(750000)))
	require.NotNil(t, c.EmployeeName)
	assert.Equal(t, "Amina Nakato", *c.EmployeeName)
	require.NotNil(t, c.PeriodName)
	assert.Equal(t, "January 2024", *c.PeriodName)
}

func TestCreate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t)

	tests := []struct {
		name    string
		req     nssf.CreateContributionRequest
		wantErr error
	}{
		{"duplicate", nssf.CreateContributionRequest{EmployeeID: "emp-1", PayrollPeriodID: f.periodID, NssfNumber: "NS001"}, nssf.ErrContributionExists},
		{"unknown employee", nssf.CreateContributionRequest{EmployeeID: "nobody", PayrollPeriodID: f.periodID, NssfNumber: "NS009"}, nssf.ErrEmployeeNotFound},
		{"unknown period", nssf.CreateContributionRequest{EmployeeID: "emp-1", PayrollPeriodID: "missing", NssfNumber: "NS001"}, nssf.ErrPeriodNotFound},
		{"zero salary", nssf.CreateContributionRequest{EmployeeID: "emp-2", PayrollPeriodID: f.periodID, NssfNumber: "NS002"}, nssf.ErrInvalidSalary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.service.Create(ctx, nssf.CreateContributionRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUpdate_RecalculatesAmounts(t *testing.T) {
	f := newFixture(t)
	c := f.create(t)

	gross := decimal.RequireFromString("10.10")
	updated, err := f.service.Update(context.Background(), nssf.UpdateContributionRequest{ID: c.ID, GrossSalary: &gross})
	require.NoError(t, err)

	assert.True(t, updated.EmployeeContribution.Equal(decimal.RequireFromString("0.51")))
	assert.True(t, updated.EmployerContribution.Equal(decimal.RequireFromString("1.01")))
	assert.True(t, updated.TotalContribution.Equal(decimal.RequireFromString("1.52")))
}

func TestUpdate_PaidIsFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t)

	_, err := f.service.UpdateStatus(ctx, nssf.UpdateStatusRequest{ID: c.ID, Status: "paid"})
	require.NoError(t, err)

	number := "NS999"
	_, err = f.service.Update(ctx, nssf.UpdateContributionRequest{ID: c.ID, NssfNumber: &number})
	assert.ErrorIs(t, err, nssf.ErrContributionPaid)
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t)

	processedAt := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return processedAt }

	processed, err := f.service.UpdateStatus(ctx, nssf.UpdateStatusRequest{ID: c.ID, Status: "processed"})
	require.NoError(t, err)
	assert.Equal(t, "processed", processed.Status)
	require.NotNil(t, processed.ProcessedAt)
	assert.Equal(t, "2024-02-01T09:00:00Z", *processed.ProcessedAt)

	_, err = f.service.UpdateStatus(ctx, nssf.UpdateStatusRequest{ID: c.ID, Status: "processed"})
	assert.ErrorIs(t, err, nssf.ErrInvalidStatusTransition)

	paid, err := f.service.UpdateStatus(ctx, nssf.UpdateStatusRequest{ID: c.ID, Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)

	_, err = f.service.UpdateStatus(ctx, nssf.UpdateStatusRequest{ID: c.ID, Status: "pending"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.service.UpdateStatus(ctx, nssf.UpdateStatusRequest{ID: "missing", Status: "paid"})
	assert.ErrorIs(t, err, nssf.ErrContributionNotFound)
}

func TestDelete_AnyStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t)

	_, err := f.service.UpdateStatus(ctx, nssf.UpdateStatusRequest{ID: c.ID, Status: "paid"})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, c.ID))
	_, err = f.service.Get(ctx, c.ID)
	assert.ErrorIs(t, err, nssf.ErrContributionNotFound)
	assert.ErrorIs(t, f.service.Delete(ctx, c.ID), nssf.ErrContributionNotFound)
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t)

	status := "pending"
	list, err := f.service.List(ctx, nssf.ContributionFilter{PayrollPeriodID: &f.periodID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, 1, list.Page)

	paid := "paid"
	list, err = f.service.List(ctx, nssf.ContributionFilter{Status: &paid})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
	assert.Empty(t, list.Data)
}

func TestCalculate(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Calculate(context.Background(), decimal.NewFromInt(5000000))
	require.NoError(t, err)
	assert.True(t, result.TotalContribution.Equal(decimal.NewFromInt(750000)))
	assert.True(t, result.EmployeeRate.Equal(decimal.RequireFromString("0.05")))

	_, err = f.service.Calculate(context.Background(), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, nssf.ErrInvalidSalary)
}
