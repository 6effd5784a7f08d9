package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	UpdatePeriod(w http.ResponseWriter, r *http.Request)
	DeletePeriod(w http.ResponseWriter, r *http.Request)

	// Lifecycle
	GenerateItems(w http.ResponseWriter, r *http.Request)
	ProcessPayroll(w http.ResponseWriter, r *http.Request)
	MarkPayrollPaid(w http.ResponseWriter, r *http.Request)

	// Items
	ListItems(w http.ResponseWriter, r *http.Request)
	ExportItemsCSV(w http.ResponseWriter, r *http.Request)
	ExportRegisterPDF(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", result)
}

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	result, err := h.payrollService.GetPeriod(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	filter := payroll.PeriodFilter{
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
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if search := query.Get("search"); search != "" {
		filter.Search = &search
	}

	result, err := h.payrollService.ListPeriods(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	var req payroll.UpdatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.UpdatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	if err := h.payrollService.DeletePeriod(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period deleted successfully", nil)
}

// ========== LIFECYCLE ==========

func (h *payrollHandlerImpl) GenerateItems(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	result, err := h.payrollService.GenerateItems(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Payroll items generated"
	if result.Empty {
		message = "No active employees with a payable salary; period has no items"
	}
	response.SuccessWithMessage(w, message, result)
}

func (h *payrollHandlerImpl) ProcessPayroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	result, err := h.payrollService.ProcessPayroll(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll processed", result)
}

func (h *payrollHandlerImpl) MarkPayrollPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	result, err := h.payrollService.MarkPayrollPaid(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll marked as paid", result)
}

// ========== ITEMS ==========

func itemFilterFromRequest(r *http.Request) payroll.ItemFilter {
	filter := payroll.ItemFilter{PeriodID: chi.URLParam(r, "id")}

	query := r.URL.Query()
	if search := query.Get("search"); search != "" {
		filter.Search = &search
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if method := query.Get("payment_method"); method != "" {
		filter.PaymentMethod = &method
	}

	return filter
}

func (h *payrollHandlerImpl) ListItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListItems(r.Context(), itemFilterFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportItemsCSV(w http.ResponseWriter, r *http.Request) {
	filter := itemFilterFromRequest(r)

	result, err := h.payrollService.ListItems(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteItemsCSV(&buf, result.Data); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll-items-%s.csv"`, filter.PeriodID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.ErrorContext(r.Context(), "failed to write csv export", slog.Any("error", err))
	}
}

func (h *payrollHandlerImpl) ExportRegisterPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	period, err := h.payrollService.GetPeriod(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items, err := h.payrollService.ListItems(r.Context(), payroll.ItemFilter{PeriodID: id})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRegisterPDF(&buf, period, items.Data); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll-register-%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.ErrorContext(r.Context(), "failed to write payroll register", slog.Any("error", err))
	}
}
