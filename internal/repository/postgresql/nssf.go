package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type contributionRepository struct {
	db *database.DB
}

func NewContributionRepository(db *database.DB) nssf.ContributionRepository {
	return &contributionRepository{db: db}
}

const contributionSelect = `
	SELECT nc.id, nc.employee_id, nc.payroll_period_id, nc.gross_salary,
		   nc.employee_contribution, nc.employer_contribution, nc.total_contribution,
		   nc.nssf_number, nc.status, nc.processed_at, nc.created_at, nc.updated_at,
		   e.full_name, e.employee_code, pp.name
	FROM nssf_contributions nc
	LEFT JOIN employees e ON nc.employee_id = e.id
	LEFT JOIN payroll_periods pp ON nc.payroll_period_id = pp.id
`

func scanContribution(row pgx.Row) (nssf.Contribution, error) {
	var c nssf.Contribution
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.PayrollPeriodID, &c.GrossSalary,
		&c.EmployeeContribution, &c.EmployerContribution, &c.TotalContribution,
		&c.NssfNumber, &c.Status, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.EmployeeName, &c.EmployeeCode, &c.PeriodName,
	)
	return c, err
}

func (r *contributionRepository) Create(ctx context.Context, c nssf.Contribution) (nssf.Contribution, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return nssf.Contribution{}, fmt.Errorf("failed to generate contribution id: %w", err)
	}

	query := `
		INSERT INTO nssf_contributions (
			id, employee_id, payroll_period_id, gross_salary,
			employee_contribution, employer_contribution, total_contribution,
			nssf_number, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = q.Exec(ctx, query,
		id.String(), c.EmployeeID, c.PayrollPeriodID, c.GrossSalary,
		c.EmployeeContribution, c.EmployerContribution, c.TotalContribution,
		c.NssfNumber, string(c.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "uk_nssf_employee_period":
				return nssf.Contribution{}, nssf.ErrContributionExists
			case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == "nssf_contributions_employee_id_fkey":
				return nssf.Contribution{}, nssf.ErrEmployeeNotFound
			case pgErr.Code == pgForeignKeyViolation:
				return nssf.Contribution{}, nssf.ErrPeriodNotFound
			}
		}
		return nssf.Contribution{}, fmt.Errorf("failed to create nssf contribution: %w", err)
	}

	return r.GetByID(ctx, id.String())
}

func (r *contributionRepository) GetByID(ctx context.Context, id string) (nssf.Contribution, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanContribution(q.QueryRow(ctx, contributionSelect+` WHERE nc.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nssf.Contribution{}, nssf.ErrContributionNotFound
		}
		return nssf.Contribution{}, fmt.Errorf("failed to get nssf contribution: %w", err)
	}

	return c, nil
}

func (r *contributionRepository) List(ctx context.Context, filter nssf.ContributionFilter) ([]nssf.Contribution, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.PayrollPeriodID != nil {
		where += fmt.Sprintf(" AND nc.payroll_period_id = $%d", argIdx)
		args = append(args, *filter.PayrollPeriodID)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND nc.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND nc.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Search != nil {
		where += fmt.Sprintf(" AND (e.full_name ILIKE $%d OR e.employee_code ILIKE $%d OR nc.nssf_number ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := `
		SELECT COUNT(*)
		FROM nssf_contributions nc
		LEFT JOIN employees e ON nc.employee_id = e.id
	` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count nssf contributions: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := contributionSelect + where + fmt.Sprintf(` ORDER BY nc.created_at DESC LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list nssf contributions: %w", err)
	}
	defer rows.Close()

	var contributions []nssf.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan nssf contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate nssf contributions: %w", err)
	}

	return contributions, totalCount, nil
}

func (r *contributionRepository) Update(ctx context.Context, c nssf.Contribution, expected nssf.ContributionStatus) (nssf.Contribution, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE nssf_contributions
		SET gross_salary = $3, employee_contribution = $4, employer_contribution = $5,
			total_contribution = $6, nssf_number = $7, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query,
		c.ID, string(expected), c.GrossSalary, c.EmployeeContribution, c.EmployerContribution,
		c.TotalContribution, c.NssfNumber,
	)
	if err != nil {
		return nssf.Contribution{}, fmt.Errorf("failed to update nssf contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nssf.Contribution{}, r.missOrConflict(ctx, c.ID)
	}

	return r.GetByID(ctx, c.ID)
}

func (r *contributionRepository) UpdateStatus(ctx context.Context, id string, expected, target nssf.ContributionStatus, processedAt time.Time) (nssf.Contribution, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE nssf_contributions
		SET status = $3, processed_at = $4, updated_at = $4
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, string(expected), string(target), processedAt)
	if err != nil {
		return nssf.Contribution{}, fmt.Errorf("failed to update nssf contribution status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nssf.Contribution{}, r.missOrConflict(ctx, id)
	}

	return r.GetByID(ctx, id)
}

func (r *contributionRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM nssf_contributions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete nssf contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nssf.ErrContributionNotFound
	}

	return nil
}

func (r *contributionRepository) missOrConflict(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM nssf_contributions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check nssf contribution: %w", err)
	}
	if !exists {
		return nssf.ErrContributionNotFound
	}
	return nssf.ErrConcurrentModification
}
