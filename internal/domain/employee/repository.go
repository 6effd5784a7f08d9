package employee

import "context"

// EmployeeRepository is a read-only view of the employee directory.
// Employees are maintained by the HR side of the dashboard.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActive(ctx context.Context) ([]Employee, error)
}
