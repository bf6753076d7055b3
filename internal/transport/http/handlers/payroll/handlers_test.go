package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/employees"
	"c2ms/internal/domain/expenses"
	"c2ms/internal/domain/payroll"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/transport/http/middleware"
)

type fixture struct {
	router   http.Handler
	expenses *expenses.Service
	employee *employees.Employee
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	backend := docstore.NewMemory()
	profile := config.DefaultProfile()
	employeeSvc := employees.NewService(backend)
	attendanceSvc := attendance.NewService(backend, employeeSvc, profile)
	expenseSvc := expenses.NewService(backend)
	svc := payroll.NewService(backend, employeeSvc, attendanceSvc, expenseSvc, profile)

	emp, err := employeeSvc.Create(context.Background(), employees.Input{
		Nama:       "Budi",
		Jabatan:    "Supir",
		GajiPokok:  decimal.NewFromInt(3000000),
		UangHarian: decimal.NewFromInt(50000),
		Status:     employees.StatusAktif,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(svc, auth.Permissions{}, nil, nil).RegisterRoutes(r)
	return fixture{router: r, expenses: expenseSvc, employee: emp}
}

func (f fixture) do(t *testing.T, role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u-1", Email: role + "@c2ms.local", Role: role}))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestPayrollLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, auth.RoleFinance, http.MethodPost, "/payroll/2026-03/generate", map[string]any{
		"inputs": map[string]any{f.employee.ID: map[string]any{"commission": "250000"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, auth.RoleFinance, http.MethodPost, "/payroll/2026-03/pay", map[string]string{"metode": "Transfer"})
	assert.Equal(t, http.StatusConflict, rec.Code, "pay before approve")

	rec = f.do(t, auth.RoleFinance, http.MethodPost, "/payroll/2026-03/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, auth.RoleFinance, http.MethodPost, "/payroll/2026-03/generate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "approved payroll is locked")

	rec = f.do(t, auth.RoleFinance, http.MethodPost, "/payroll/2026-03/pay", map[string]string{"metode": "Transfer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data payroll.MonthlyPayroll `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, payroll.StatusPaid, resp.Data.Status)
	assert.True(t, resp.Data.Totals.Net.Equal(decimal.NewFromInt(3250000)), resp.Data.Totals.Net.String())

	exp, err := f.expenses.Get(context.Background(), resp.Data.ExpenseID)
	require.NoError(t, err)
	assert.Equal(t, expenses.KategoriGaji, exp.Kategori)
	assert.True(t, exp.Jumlah.Equal(resp.Data.Totals.Net))

	rec = f.do(t, auth.RoleFinance, http.MethodGet, "/payroll/2026-03/register.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Budi")

	rec = f.do(t, auth.RoleFinance, http.MethodGet, "/payroll/2026-03/payslips/"+f.employee.ID+".pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestPayrollValidationAndPermissions(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		role   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad month", auth.RoleFinance, http.MethodPost, "/payroll/2026-13/generate", nil, http.StatusBadRequest},
		{"negative commission", auth.RoleFinance, http.MethodPost, "/payroll/preview", map[string]any{
			"employeeId": f.employee.ID, "period": "2026-03", "inputs": map[string]any{"commission": "-1"},
		}, http.StatusBadRequest},
		{"unknown period", auth.RoleFinance, http.MethodGet, "/payroll/2020-01", nil, http.StatusNotFound},
		{"operations cannot generate", auth.RoleOperations, http.MethodPost, "/payroll/2026-03/generate", nil, http.StatusForbidden},
		{"approve empty", auth.RoleAdmin, http.MethodPost, "/payroll/2026-04/approve", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.do(t, tc.role, tc.method, tc.path, tc.body).Code)
		})
	}
}

func TestPreviewDoesNotStore(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, auth.RoleFinance, http.MethodPost, "/payroll/preview", map[string]any{
		"employeeId": f.employee.ID, "period": "2026-03",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, auth.RoleFinance, http.MethodGet, "/payroll/2026-03", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
