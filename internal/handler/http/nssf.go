package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type NssfHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Calculate(w http.ResponseWriter, r *http.Request)
}

type nssfHandlerImpl struct {
	contributionService nssf.ContributionService
}

func NewNssfHandler(contributionService nssf.ContributionService) NssfHandler {
	return &nssfHandlerImpl{contributionService: contributionService}
}

func (h *nssfHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req nssf.CreateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.contributionService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "NSSF contribution created", result)
}

func (h *nssfHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Contribution ID is required", nil)
		return
	}

	result, err := h.contributionService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *nssfHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := nssf.ContributionFilter{
		Page:  1,
		Limit: 20,
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if periodID := query.Get("payroll_period_id"); periodID != "" {
		filter.PayrollPeriodID = &periodID
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if search := query.Get("search"); search != "" {
		filter.Search = &search
	}

	result, err := h.contributionService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *nssfHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Contribution ID is required", nil)
		return
	}

	var req nssf.UpdateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.contributionService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *nssfHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Contribution ID is required", nil)
		return
	}

	var req nssf.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.contributionService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "NSSF contribution status updated", result)
}

func (h *nssfHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Contribution ID is required", nil)
		return
	}

	if err := h.contributionService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "NSSF contribution deleted successfully", nil)
}

func (h *nssfHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	gross, err := decimal.NewFromString(r.URL.Query().Get("gross_salary"))
	if err != nil {
		response.HandleError(w, validator.ValidationErrors{
			{Field: "gross_salary", Message: "must be a decimal number"},
		})
		return
	}

	result, err := h.contributionService.Calculate(r.Context(), gross)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
