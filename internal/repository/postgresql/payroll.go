package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PERIODS ==========

const periodSelect = `
	SELECT pp.id, pp.name, pp.start_date, pp.end_date, pp.payment_date, pp.currency, pp.status,
		   pp.created_by, pp.processed_at, pp.paid_at, pp.created_at, pp.updated_at,
		   COALESCE(agg.item_count, 0), COALESCE(agg.total_gross, 0),
		   COALESCE(agg.total_tax, 0), COALESCE(agg.total_net, 0)
	FROM payroll_periods pp
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS item_count,
			   SUM(pi.basic_salary) AS total_gross,
			   SUM(pi.tax_amount) AS total_tax,
			   SUM(pi.net_salary) AS total_net
		FROM payroll_items pi
		WHERE pi.period_id = pp.id
	) agg ON true
`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	err := row.Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.PaymentDate, &p.Currency, &p.Status,
		&p.CreatedBy, &p.ProcessedAt, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
		&p.ItemCount, &p.TotalGross, &p.TotalTax, &p.TotalNet,
	)
	return p, err
}

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to generate period id: %w", err)
	}

	query := `
		INSERT INTO payroll_periods (id, name, start_date, end_date, payment_date, currency, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var createdID string
	err = q.QueryRow(ctx, query,
		id.String(), period.Name, period.StartDate, period.EndDate, period.PaymentDate,
		period.Currency, string(period.Status), period.CreatedBy,
	).Scan(&createdID)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return r.GetPeriodByID(ctx, createdID)
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeriod(q.QueryRow(ctx, periodSelect+` WHERE pp.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) LockPeriod(ctx context.Context, id string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	var locked string
	err := q.QueryRow(ctx, `SELECT id FROM payroll_periods WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to lock payroll period: %w", err)
	}

	return r.GetPeriodByID(ctx, id)
}

func (r *payrollRepository) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.Period, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND pp.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Search != nil {
		where += fmt.Sprintf(" AND pp.name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_periods pp`+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := periodSelect + where + fmt.Sprintf(` ORDER BY pp.start_date DESC, pp.id DESC LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll periods: %w", err)
	}

	return periods, totalCount, nil
}

func (r *payrollRepository) UpdatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET name = $2, start_date = $3, end_date = $4, payment_date = $5, currency = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		period.ID, period.Name, period.StartDate, period.EndDate, period.PaymentDate, period.Currency,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to update payroll period: %w", err)
	}

	return r.GetPeriodByID(ctx, id)
}

func (r *payrollRepository) TransitionPeriod(ctx context.Context, id string, from, to payroll.PeriodStatus, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET status = $3::text,
			processed_at = CASE WHEN $3::text = 'processing' THEN $4::timestamptz ELSE processed_at END,
			paid_at = CASE WHEN $3::text = 'paid' THEN $4::timestamptz ELSE paid_at END,
			updated_at = $4::timestamptz
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("failed to update payroll period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, id)
	}

	return nil
}

func (r *payrollRepository) DeletePeriod(ctx context.Context, id string, expected payroll.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_periods WHERE id = $1 AND status = $2`, id, string(expected))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return payroll.ErrPeriodHasContributions
		}
		return fmt.Errorf("failed to delete payroll period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, id)
	}

	return nil
}

// missOrConflict explains a compare-and-swap that touched no rows.
func (r *payrollRepository) missOrConflict(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payroll_periods WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check payroll period: %w", err)
	}
	if !exists {
		return payroll.ErrPeriodNotFound
	}
	return payroll.ErrConcurrentModification
}

// ========== ITEMS ==========

func (r *payrollRepository) CreateItem(ctx context.Context, item payroll.Item) (payroll.Item, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.Item{}, fmt.Errorf("failed to generate item id: %w", err)
	}

	query := `
		INSERT INTO payroll_items (
			id, period_id, employee_id, basic_salary, tax_amount, net_salary,
			nssf_employee_contribution, nssf_employer_contribution, payment_method,
			bank_name, bank_account_number, mobile_money_provider, mobile_money_number, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (period_id, employee_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		id.String(), item.PeriodID, item.EmployeeID, item.BasicSalary, item.TaxAmount, item.NetSalary,
		item.NssfEmployeeContribution, item.NssfEmployerContribution, string(item.PaymentMethod),
		item.BankName, item.BankAccountNumber, item.MobileMoneyProvider, item.MobileMoneyNumber, string(item.Status),
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Item{}, payroll.ErrDuplicateItem
		}
		return payroll.Item{}, fmt.Errorf("failed to create payroll item: %w", err)
	}

	return item, nil
}

func (r *payrollRepository) GetEmployeeIDsInPeriod(ctx context.Context, periodID string) (map[string]struct{}, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id FROM payroll_items WHERE period_id = $1`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list period employees: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids[id] = struct{}{}
	}

	return ids, rows.Err()
}

func (r *payrollRepository) CountItems(ctx context.Context, periodID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_items WHERE period_id = $1`, periodID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payroll items: %w", err)
	}
	return count, nil
}

func (r *payrollRepository) TransitionItems(ctx context.Context, periodID string, from, to payroll.ItemStatus, paidAt *time.Time, paidBy *string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_items
		SET status = $3,
			paid_at = COALESCE($4::timestamptz, paid_at),
			paid_by = COALESCE($5::text, paid_by),
			updated_at = NOW()
		WHERE period_id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, periodID, string(from), string(to), paidAt, paidBy)
	if err != nil {
		return 0, fmt.Errorf("failed to update payroll item status: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *payrollRepository) ListItems(ctx context.Context, filter payroll.ItemFilter) ([]payroll.Item, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pi.id, pi.period_id, pi.employee_id, pi.basic_salary, pi.tax_amount, pi.net_salary,
			   pi.nssf_employee_contribution, pi.nssf_employer_contribution, pi.payment_method,
			   pi.bank_name, pi.bank_account_number, pi.mobile_money_provider, pi.mobile_money_number,
			   pi.status, pi.paid_at, pi.paid_by, pi.created_at, pi.updated_at,
			   e.full_name, e.employee_code, e.department_name, e.position_name
		FROM payroll_items pi
		JOIN employees e ON pi.employee_id = e.id
		WHERE pi.period_id = $1
	`
	args := []interface{}{filter.PeriodID}
	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND pi.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.PaymentMethod != nil {
		query += fmt.Sprintf(" AND pi.payment_method = $%d", argIdx)
		args = append(args, *filter.PaymentMethod)
		argIdx++
	}
	if filter.Search != nil {
		query += fmt.Sprintf(" AND (e.full_name ILIKE $%d OR e.employee_code ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	query += " ORDER BY e.full_name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll items: %w", err)
	}
	defer rows.Close()

	var items []payroll.Item
	for rows.Next() {
		var i payroll.Item
		if err := rows.Scan(
			&i.ID, &i.PeriodID, &i.EmployeeID, &i.BasicSalary, &i.TaxAmount, &i.NetSalary,
			&i.NssfEmployeeContribution, &i.NssfEmployerContribution, &i.PaymentMethod,
			&i.BankName, &i.BankAccountNumber, &i.MobileMoneyProvider, &i.MobileMoneyNumber,
			&i.Status, &i.PaidAt, &i.PaidBy, &i.CreatedAt, &i.UpdatedAt,
			&i.EmployeeName, &i.EmployeeCode, &i.DepartmentName, &i.PositionName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll item: %w", err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll items: %w", err)
	}

	return items, nil
}
