package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated connection to the test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations.
// The test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err, "failed to connect to test database")

	require.NoError(t, database.Migrate(ctx, db, nil))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)

	return setup
}

// TruncateAllTables removes every row from the payroll tables.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"nssf_contributions",
		"payroll_items",
		"payroll_periods",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// InsertEmployee adds an active employee paid by bank transfer.
func (t *TestDatabaseSetup) InsertEmployee(tb testing.TB, id, code, name string, salary decimal.Decimal) {
	tb.Helper()

	_, err := t.DB.Exec(context.Background(), `
		INSERT INTO employees (id, employee_code, full_name, nssf_number, base_salary, payment_method, bank_name, bank_account_number)
		VALUES ($1, $2, $3, $4, $5, 'bank', 'Stanbic', '0123456789')
	`, id, code, name, "NS-"+code, salary)
	require.NoError(tb, err)
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
