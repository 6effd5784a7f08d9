package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrPeriodNotFound), errors.Is(err, nssf.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrInvalidPeriodState):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrNoItemsToProcess), errors.Is(err, payroll.ErrPeriodHasContributions):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrConcurrentModification):
		ConcurrentModification(w, err.Error())

	// Employee errors
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, nssf.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// NSSF domain errors
	case errors.Is(err, nssf.ErrInvalidSalary):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, nssf.ErrContributionNotFound):
		NotFound(w, "NSSF contribution not found")
	case errors.Is(err, nssf.ErrContributionExists),
		errors.Is(err, nssf.ErrContributionPaid),
		errors.Is(err, nssf.ErrInvalidStatusTransition):
		Conflict(w, err.Error())
	case errors.Is(err, nssf.ErrConcurrentModification):
		ConcurrentModification(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", slog.Any("error", err))
		InternalServerError(w, "An unexpected error occurred")
	}
}
