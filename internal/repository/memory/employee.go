package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var (
		emp employee.Employee
		ok  bool
	)
	r.store.read(ctx, func() {
		emp, ok = r.store.employees[id]
	})
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *employeeRepository) GetActive(ctx context.Context) ([]employee.Employee, error) {
	var employees []employee.Employee
	r.store.read(ctx, func() {
		for _, emp := range r.store.employees {
			if emp.IsActive {
				employees = append(employees, emp)
			}
		}
	})

	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeCode < employees[j].EmployeeCode
	})

	return employees, nil
}
