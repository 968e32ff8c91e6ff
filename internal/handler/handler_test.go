package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicing/internal/access"
	"invoicing/internal/apperr"
	"invoicing/internal/middleware"
	"invoicing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecurringService struct {
	err        error
	lastScope  access.Scope
	lastFilter service.RecurringFilter
	lastID     string
}

func (s *stubRecurringService) CreateTemplate(_ context.Context, scope access.Scope, req service.RecurringTemplateRequest) (service.RecurringTemplateResponse, error) {
	s.lastScope = scope
	return service.RecurringTemplateResponse{ID: "new", Name: req.Name}, s.err
}

func (s *stubRecurringService) UpdateTemplate(_ context.Context, scope access.Scope, id string, req service.RecurringTemplateRequest) (service.RecurringTemplateResponse, error) {
	s.lastScope, s.lastID = scope, id
	return service.RecurringTemplateResponse{ID: id, Name: req.Name}, s.err
}

func (s *stubRecurringService) ToggleTemplate(_ context.Context, scope access.Scope, id string) (service.RecurringTemplateResponse, error) {
	s.lastScope, s.lastID = scope, id
	return service.RecurringTemplateResponse{ID: id}, s.err
}

func (s *stubRecurringService) DeleteTemplate(_ context.Context, scope access.Scope, id string) error {
	s.lastScope, s.lastID = scope, id
	return s.err
}

func (s *stubRecurringService) ListTemplates(_ context.Context, scope access.Scope, filter service.RecurringFilter) ([]service.RecurringTemplateResponse, int64, error) {
	s.lastScope, s.lastFilter = scope, filter
	return []service.RecurringTemplateResponse{{ID: "a"}}, 1, s.err
}

func (s *stubRecurringService) GetTemplate(_ context.Context, scope access.Scope, id string) (service.RecurringTemplateResponse, error) {
	s.lastScope, s.lastID = scope, id
	return service.RecurringTemplateResponse{ID: id}, s.err
}

func (s *stubRecurringService) GenerateNow(_ context.Context, scope access.Scope, id string) (service.DocumentResponse, error) {
	s.lastScope, s.lastID = scope, id
	return service.DocumentResponse{ID: "doc", RecurringTemplateID: id}, s.err
}

type stubScheduler struct {
	summary service.RunSummary
	err     error
	calls   int
}

func (s *stubScheduler) RunDue(context.Context, time.Time) (service.RunSummary, error) {
	s.calls++
	return s.summary, s.err
}

func (s *stubScheduler) ListDue(context.Context, time.Time) ([]service.DueTemplateResponse, error) {
	return nil, s.err
}

var testScope = access.Scope{UserID: uuid.New(), CompanyID: uuid.New(), Role: access.RoleSuperadmin}

func fakeAuth(c *gin.Context) {
	middleware.SetScope(c, testScope)
	c.Next()
}

func newRecurringRouter(svc service.RecurringService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewRecurringHandler(svc).RegisterRoutes(&r.RouterGroup, fakeAuth)
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func validRequest() service.RecurringTemplateRequest {
	return service.RecurringTemplateRequest{
		CustomerID: uuid.NewString(),
		Name:       "Retainer",
		Frequency:  "monthly",
		StartDate:  "2025-01-31",
		Lines: []service.RecurringLineRequest{
			{Description: "Support", Quantity: "1", Unit: "pcs", UnitPrice: "100", TaxRate: "standard_20"},
		},
	}
}

func TestCreateTemplateHandler(t *testing.T) {
	svc := &stubRecurringService{}
	r := newRecurringRouter(svc)

	w := do(r, http.MethodPost, "/api/recurring-invoices", validRequest())
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testScope, svc.lastScope)
	assert.Equal(t, "success", decode(t, w)["status"])

	bad := validRequest()
	bad.Lines = nil
	w = do(r, http.MethodPost, "/api/recurring-invoices", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecurringHandlerMapsErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", apperr.Forbidden("recurring.create", "only superadmins can manage recurring invoices"), http.StatusForbidden},
		{"not found", apperr.NotFound("recurring.get", "recurring template not found"), http.StatusNotFound},
		{"validation", apperr.Validation("recurring.create", "lines is required"), http.StatusBadRequest},
		{"conflict", service.ErrTemplateInUse, http.StatusConflict},
		{"persistence", apperr.Persistence("recurring.list", "failed to list recurring templates", errors.New("pq: password leaked")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecurringRouter(&stubRecurringService{err: tt.err})
			w := do(r, http.MethodDelete, "/api/recurring-invoices/abc", nil)

			assert.Equal(t, tt.want, w.Code)
			body := decode(t, w)
			assert.Equal(t, "error", body["status"])
			assert.NotContains(t, body["error"], "password leaked")
		})
	}
}

func TestRecurringRoutes(t *testing.T) {
	svc := &stubRecurringService{}
	r := newRecurringRouter(svc)

	w := do(r, http.MethodGet, "/api/recurring-invoices?active=false&page=2&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastFilter.Active)
	assert.False(t, *svc.lastFilter.Active)
	assert.Equal(t, 2, svc.lastFilter.Page)
	assert.Equal(t, 5, svc.lastFilter.Limit)

	w = do(r, http.MethodGet, "/api/recurring-invoices?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/recurring-invoices/t-1/toggle", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", svc.lastID)

	w = do(r, http.MethodPut, "/api/recurring-invoices/t-2", validRequest())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-2", svc.lastID)

	w = do(r, http.MethodPost, "/api/recurring-invoices/t-3/generate", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "t-3", data["recurring_template_id"])

	w = do(r, http.MethodGet, "/api/recurring-invoices/t-4", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-4", svc.lastID)
}

func TestCronHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sched := &stubScheduler{summary: service.RunSummary{RunDate: "2025-03-10", Processed: 3, Successful: 2, Failed: 1}}
	r := gin.New()
	NewCronHandler(sched).RegisterRoutes(&r.RouterGroup, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/cron/recurring-invoices", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, sched.calls)

	req = httptest.NewRequest(http.MethodPost, "/api/cron/recurring-invoices", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["processed"])
	assert.EqualValues(t, 1, data["failed"])

	sched.err = service.ErrRunInProgress
	req = httptest.NewRequest(http.MethodPost, "/api/cron/recurring-invoices", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSchedulePreview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(time.UTC)
	h.now = func() time.Time { return time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC) }
	r := gin.New()
	h.RegisterRoutes(&r.RouterGroup, fakeAuth)

	w := do(r, http.MethodGet, "/api/schedule/preview?frequency=monthly&anchor=2025-01-31&day_of_month=31&count=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"2025-02-28", "2025-03-31", "2025-04-30"}, data["dates"])

	tests := []string{
		"/api/schedule/preview?frequency=daily&anchor=2025-01-31",
		"/api/schedule/preview?frequency=weekly&anchor=31.01.2025",
		"/api/schedule/preview?frequency=weekly&anchor=2025-01-31&day_of_month=3",
		"/api/schedule/preview?frequency=monthly&anchor=2025-01-31&count=0",
	}
	for _, path := range tests {
		w := do(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}
