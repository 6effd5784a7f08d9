package nssf

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type ContributionServiceImpl struct {
	tx               database.Transactor
	contributionRepo nssf.ContributionRepository
	payrollRepo      payroll.PayrollRepository
	employeeRepo     employee.EmployeeRepository
	logger           *slog.Logger
	now              func() time.Time
}

func NewContributionService(
	tx database.Transactor,
	contributionRepo nssf.ContributionRepository,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	logger *slog.Logger,
) nssf.ContributionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContributionServiceImpl{
		tx:               tx,
		contributionRepo: contributionRepo,
		payrollRepo:      payrollRepo,
		employeeRepo:     employeeRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// Create records a pending contribution. Gross salary is read from the
// employee record at call time.
func (s *ContributionServiceImpl) Create(ctx context.Context, req nssf.CreateContributionRequest) (nssf.ContributionResponse, error) {
	if err := req.Validate(); err != nil {
		return nssf.ContributionResponse{}, err
	}

	if _, err := s.payrollRepo.GetPeriodByID(ctx, req.PayrollPeriodID); err != nil {
		if errors.Is(err, payroll.ErrPeriodNotFound) {
			return nssf.ContributionResponse{}, nssf.ErrPeriodNotFound
		}
		return nssf.ContributionResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nssf.ContributionResponse{}, nssf.ErrEmployeeNotFound
		}
		return nssf.ContributionResponse{}, err
	}

	contribution := nssf.Contribution{
		EmployeeID:      emp.ID,
		PayrollPeriodID: req.PayrollPeriodID,
		NssfNumber:      strings.TrimSpace(req.NssfNumber),
		Status:          nssf.StatusPending,
	}
	if err := contribution.Recalculate(emp.BaseSalary); err != nil {
		return nssf.ContributionResponse{}, err
	}

	created, err := s.contributionRepo.Create(ctx, contribution)
	if err != nil {
		return nssf.ContributionResponse{}, err
	}

	s.logger.InfoContext(ctx, "nssf contribution created",
		slog.String("contribution_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
		slog.String("period_id", created.PayrollPeriodID),
		slog.String("total", created.TotalContribution.String()),
	)

	return mapToContributionResponse(created), nil
}

func (s *ContributionServiceImpl) Get(ctx context.Context, id string) (nssf.ContributionResponse, error) {
	c, err := s.contributionRepo.GetByID(ctx, id)
	if err != nil {
		return nssf.ContributionResponse{}, err
	}
	return mapToContributionResponse(c), nil
}

func (s *ContributionServiceImpl) List(ctx context.Context, filter nssf.ContributionFilter) (nssf.ListContributionResponse, error) {
	if err := filter.Validate(); err != nil {
		return nssf.ListContributionResponse{}, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	contributions, total, err := s.contributionRepo.List(ctx, filter)
	if err != nil {
		return nssf.ListContributionResponse{}, err
	}

	data := make([]nssf.ContributionResponse, 0, len(contributions))
	for _, c := range contributions {
		data = append(data, mapToContributionResponse(c))
	}

	return nssf.ListContributionResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// Update edits a contribution that is not yet paid. A new gross salary
// recomputes all three amounts.
func (s *ContributionServiceImpl) Update(ctx context.Context, req nssf.UpdateContributionRequest) (nssf.ContributionResponse, error) {
	if err := req.Validate(); err != nil {
		return nssf.ContributionResponse{}, err
	}

	var updated nssf.Contribution
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.contributionRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := nssf.CanEdit(current.Status); err != nil {
			return err
		}

		if req.GrossSalary != nil {
			if err := current.Recalculate(*req.GrossSalary); err != nil {
				return err
			}
		}
		if req.NssfNumber != nil {
			current.NssfNumber = strings.TrimSpace(*req.NssfNumber)
		}

		updated, err = s.contributionRepo.Update(ctx, current, current.Status)
		return err
	})
	if err != nil {
		return nssf.ContributionResponse{}, err
	}

	return mapToContributionResponse(updated), nil
}

// UpdateStatus moves a contribution forward. Skipping processed is allowed.
func (s *ContributionServiceImpl) UpdateStatus(ctx context.Context, req nssf.UpdateStatusRequest) (nssf.ContributionResponse, error) {
	if err := req.Validate(); err != nil {
		return nssf.ContributionResponse{}, err
	}
	target := nssf.ContributionStatus(strings.TrimSpace(req.Status))

	var updated nssf.Contribution
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.contributionRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := nssf.CanAdvance(current.Status, target); err != nil {
			return err
		}

		updated, err = s.contributionRepo.UpdateStatus(ctx, req.ID, current.Status, target, s.now())
		return err
	})
	if err != nil {
		return nssf.ContributionResponse{}, err
	}

	s.logger.InfoContext(ctx, "nssf contribution status updated",
		slog.String("contribution_id", updated.ID),
		slog.String("status", string(updated.Status)),
	)

	return mapToContributionResponse(updated), nil
}

// Delete removes a contribution in any status.
func (s *ContributionServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.contributionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "nssf contribution deleted", slog.String("contribution_id", id))
	return nil
}

func (s *ContributionServiceImpl) Calculate(ctx context.Context, gross decimal.Decimal) (nssf.CalculationResponse, error) {
	amounts, err := nssf.Compute(gross)
	if err != nil {
		return nssf.CalculationResponse{}, err
	}
	return nssf.CalculationResponse{
		GrossSalary:          gross,
		EmployeeRate:         nssf.EmployeeRate,
		EmployerRate:         nssf.EmployerRate,
		EmployeeContribution: amounts.Employee,
		EmployerContribution: amounts.Employer,
		TotalContribution:    amounts.Total,
	}, nil
}

func mapToContributionResponse(c nssf.Contribution) nssf.ContributionResponse {
	var processedAt *string
	if c.ProcessedAt != nil {
		v := c.ProcessedAt.Format(time.RFC3339)
		processedAt = &v
	}
	return nssf.ContributionResponse{
		ID:                   c.ID,
		EmployeeID:           c.EmployeeID,
		EmployeeName:         c.EmployeeName,
		EmployeeCode:         c.EmployeeCode,
		PayrollPeriodID:      c.PayrollPeriodID,
		PeriodName:           c.PeriodName,
		GrossSalary:          c.GrossSalary,
		EmployeeContribution: c.EmployeeContribution,
		EmployerContribution: c.EmployerContribution,
		TotalContribution:    c.TotalContribution,
		NssfNumber:           c.NssfNumber,
		Status:               string(c.Status),
		ProcessedAt:          processedAt,
		CreatedAt:            c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            c.UpdatedAt.Format(time.RFC3339),
	}
}
