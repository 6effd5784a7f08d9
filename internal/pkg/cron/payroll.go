package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

const draftRefreshPageSize = 100

type PayrollJobs struct {
	payrollService payroll.PayrollService
	logger         *slog.Logger
}

func NewPayrollJobs(payrollService payroll.PayrollService, logger *slog.Logger) *PayrollJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{payrollService: payrollService, logger: logger}
}

// RegisterJobs adds the draft refresh job. A zero interval leaves it off.
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, draftRefreshInterval time.Duration) {
	scheduler.AddJob("refresh_draft_payroll_items", draftRefreshInterval, j.RefreshDraftItems)
}

// RefreshDraftItems reruns generation for every draft period so employees
// activated after the first run get an item. Periods that leave draft while
// the job runs are skipped.
func (j *PayrollJobs) RefreshDraftItems(ctx context.Context) error {
	status := string(payroll.PeriodStatusDraft)

	var created int
	for page := 1; ; page++ {
		list, err := j.payrollService.ListPeriods(ctx, payroll.PeriodFilter{
			Status: &status,
			Page:   page,
			Limit:  draftRefreshPageSize,
		})
		if err != nil {
			return fmt.Errorf("failed to list draft periods: %w", err)
		}

		for _, period := range list.Data {
			result, err := j.payrollService.GenerateItems(ctx, period.ID)
			if err != nil {
				if errors.Is(err, payroll.ErrInvalidPeriodState) || errors.Is(err, payroll.ErrPeriodNotFound) {
					continue
				}
				return fmt.Errorf("failed to refresh period %s: %w", period.ID, err)
			}
			created += result.CreatedCount
		}

		if len(list.Data) < draftRefreshPageSize {
			break
		}
	}

	if created > 0 {
		j.logger.InfoContext(ctx, "draft payroll items refreshed", slog.Int("created_count", created))
	}
	return nil
}
