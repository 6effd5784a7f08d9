package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshDraftItems(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutEmployee(employee.Employee{ID: "emp-1", EmployeeCode: "EMP-001", FullName: "Amina", BaseSalary: decimal.NewFromInt(1000000), IsActive: true, PaymentMethod: employee.PaymentMethodBank})

	repo := memory.NewPayrollRepository(store)
	svc := payrollService.NewPayrollService(store, repo, memory.NewEmployeeRepository(store), payroll.PAYEPolicy{}, "UGX", nil)

	draft, err := svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Name: "January 2024", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	processing, err := svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Name: "December 2023", StartDate: "2023-12-01", EndDate: "2023-12-31"})
	require.NoError(t, err)
	_, err = svc.GenerateItems(ctx, processing.ID)
	require.NoError(t, err)
	_, err = svc.ProcessPayroll(ctx, processing.ID)
	require.NoError(t, err)

	store.PutEmployee(employee.Employee{ID: "emp-2", EmployeeCode: "EMP-002", FullName: "Brian", BaseSalary: decimal.NewFromInt(800000), IsActive: true, PaymentMethod: employee.PaymentMethodCash})

	jobs := NewPayrollJobs(svc, nil)
	require.NoError(t, jobs.RefreshDraftItems(ctx))

	got, err := svc.GetPeriod(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ItemCount)

	got, err = svc.GetPeriod(ctx, processing.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ItemCount)
	assert.Equal(t, "processing", got.Status)
}

func TestScheduler_RunOnceAndDisabledJobs(t *testing.T) {
	scheduler := NewScheduler(nil)

	var runs atomic.Int32
	scheduler.AddJob("counter", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	scheduler.AddJob("failing", time.Hour, func(ctx context.Context) error {
		return errors.New("boom")
	})
	scheduler.AddJob("disabled", 0, func(ctx context.Context) error {
		t.Fatal("disabled job must not run")
		return nil
	})

	scheduler.RunOnce(context.Background())
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler(nil)

	started := make(chan struct{}, 1)
	scheduler.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	scheduler.Start(context.Background())
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	scheduler.Stop()
}
