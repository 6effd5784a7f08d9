package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	nssfService "github.com/cmlabs-hris/hris-payroll-go/internal/service/nssf"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
}

type testAPI struct {
	router   *chi.Mux
	jwt      jwt.Service
	operator string
	viewer   string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.NewStore()
	bank := "Stanbic"
	provider := "MTN"
	store.Seed([]employee.Employee{
		{ID: "emp-1", EmployeeCode: "EMP-001", FullName: "Amina Nakato", BaseSalary: decimal.NewFromInt(5000000), IsActive: true, PaymentMethod: employee.PaymentMethodBank, BankName: &bank},
		{ID: "emp-2", EmployeeCode: "EMP-002", FullName: "Brian Okello", BaseSalary: decimal.NewFromInt(1000000), IsActive: true, PaymentMethod: employee.PaymentMethodMobileMoney, MobileMoneyProvider: &provider},
		{ID: "emp-3", EmployeeCode: "EMP-003", FullName: "Carol Auma", BaseSalary: decimal.NewFromInt(300000), IsActive: true, PaymentMethod: employee.PaymentMethodCash},
	})

	payrollRepo := memory.NewPayrollRepository(store)
	employeeRepo := memory.NewEmployeeRepository(store)

	payrollSvc := payrollService.NewPayrollService(store, payrollRepo, employeeRepo, payroll.PAYEPolicy{}, "UGX", nil)
	contributionSvc := nssfService.NewContributionService(store, memory.NewContributionRepository(store), payrollRepo, employeeRepo, nil)

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(jwtService, NewPayrollHandler(payrollSvc), NewNssfHandler(contributionSvc), RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
	})

	operator, _, err := jwtService.GenerateAccessToken("user-ops", "manager")
	require.NoError(t, err)
	viewer, _, err := jwtService.GenerateAccessToken("user-view", "employee")
	require.NoError(t, err)

	return &testAPI{router: router, jwt: jwtService, operator: operator, viewer: viewer}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (a *testAPI) createPeriod(t *testing.T) payroll.PeriodResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/payroll-periods", a.operator, map[string]string{
		"name":       "January 2024",
		"start_date": "2024-01-01",
		"end_date":   "2024-01-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var period payroll.PeriodResponse
	decodeEnvelope(t, rec, &period)
	return period
}

func TestPayrollHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	period := api.createPeriod(t)
	assert.Equal(t, "draft", period.Status)
	require.NotNil(t, period.CreatedBy)
	assert.Equal(t, "user-ops", *period.CreatedBy)

	base := "/api/v1/payroll-periods/" + period.ID

	rec := api.do(t, http.MethodPost, base+"/generate", api.operator, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var generated payroll.GenerateResponse
	decodeEnvelope(t, rec, &generated)
	assert.Equal(t, 3, generated.CreatedCount)

	rec = api.do(t, http.MethodPost, base+"/process", api.operator, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var processed payroll.ProcessResponse
	decodeEnvelope(t, rec, &processed)
	assert.Equal(t, 3, processed.ProcessedCount)

	rec = api.do(t, http.MethodPost, base+"/mark-paid", api.operator, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paid payroll.MarkPaidResponse
	decodeEnvelope(t, rec, &paid)
	assert.Equal(t, 3, paid.PaidCount)
	assert.Equal(t, "paid", paid.Status)

	rec = api.do(t, http.MethodGet, base+"/items?payment_method=mobile_money", api.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var items payroll.ListItemResponse
	decodeEnvelope(t, rec, &items)
	require.Equal(t, 1, items.TotalCount)
	assert.Equal(t, "emp-2", items.Data[0].EmployeeID)
	assert.Equal(t, "paid", items.Data[0].Status)
	assert.NotNil(t, items.Data[0].PaidAt)

	rec = api.do(t, http.MethodPost, base+"/process", api.operator, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestPayrollHandler_ProcessEmptyPeriod(t *testing.T) {
	api := newTestAPI(t)
	period := api.createPeriod(t)

	rec := api.do(t, http.MethodPost, "/api/v1/payroll-periods/"+period.ID+"/process", api.operator, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.Contains(t, env.Error.Message, "no items")
}

func TestPayrollHandler_DeleteProcessingRejected(t *testing.T) {
	api := newTestAPI(t)
	period := api.createPeriod(t)
	base := "/api/v1/payroll-periods/" + period.ID

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/generate", api.operator, nil).Code)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/process", api.operator, nil).Code)

	rec := api.do(t, http.MethodDelete, base, api.operator, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodGet, base, api.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got payroll.PeriodResponse
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, "processing", got.Status)
}

func TestPayrollHandler_Validation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/payroll-periods", api.operator, map[string]string{
		"name":       "Bad",
		"start_date": "2024-02-01",
		"end_date":   "2024-01-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "end_date")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll-periods", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+api.operator)
	bad := httptest.NewRecorder()
	api.router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestPayrollHandler_NotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/payroll-periods/missing", api.viewer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/payroll-periods/missing/items", api.viewer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayrollHandler_Auth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/payroll-periods", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/payroll-periods", api.viewer, map[string]string{
		"name":       "January 2024",
		"start_date": "2024-01-01",
		"end_date":   "2024-01-31",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	other := jwt.NewJWTService("another-secret", time.Hour)
	forged, _, err := other.GenerateAccessToken("user-ops", "owner")
	require.NoError(t, err)
	rec = api.do(t, http.MethodGet, "/api/v1/payroll-periods", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPayrollHandler_Exports(t *testing.T) {
	api := newTestAPI(t)
	period := api.createPeriod(t)
	base := "/api/v1/payroll-periods/" + period.ID
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/generate", api.operator, nil).Code)

	rec := api.do(t, http.MethodGet, base+"/items/export.csv", api.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "employee_code,"))

	rec = api.do(t, http.MethodGet, base+"/register.pdf", api.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/readyz", "", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/", "", nil).Code)
}
