package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/api"
	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/config"
	"github.com/rshade/openfootprint/internal/store"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Addr:            "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: time.Second,
		AllowedOrigins:  []string{"*"},
	}
}

func newServer(t *testing.T, cfg config.ServerConfig, opts ...api.Option) http.Handler {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = store.Seed(ctx, s)
	require.NoError(t, err)

	srv, err := api.New(catalog.New(s), cfg, opts...)
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRootAndHealth(t *testing.T) {
	h := newServer(t, testConfig())

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.WelcomeMessage, decode[map[string]string](t, rec)["message"])
	assert.NotEmpty(t, rec.Header().Get(api.TraceHeader))

	rec = do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "healthy"}, decode[map[string]string](t, rec))
}

func TestListWithPaging(t *testing.T) {
	h := newServer(t, testConfig())

	for _, target := range []string{"/api/organizations", "/api/organizations/"} {
		rec := do(t, h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Len(t, decode[[]map[string]any](t, rec), 3)
	}

	rec := do(t, h, http.MethodGet, "/api/facilities?skip=1&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Distribution Center Beta", list[0]["name"])

	for _, q := range []string{"skip=-1", "limit=0", "limit=1001", "limit=abc"} {
		rec = do(t, h, http.MethodGet, "/api/facilities?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.NotEmpty(t, decode[api.ErrorResponse](t, rec).Detail)
	}
}

func TestUnmatchedRoutesReplyWithDetail(t *testing.T) {
	h := newServer(t, testConfig())

	tests := []struct {
		method, target string
		status         int
		detail         string
		allow          string
	}{
		{http.MethodGet, "/api/nope", http.StatusNotFound, "Not Found", ""},
		{http.MethodGet, "/nope", http.StatusNotFound, "Not Found", ""},
		{http.MethodDelete, "/api/organizations", http.StatusMethodNotAllowed, "Method Not Allowed", "POST"},
		{http.MethodPut, "/api/organizations/x", http.StatusMethodNotAllowed, "Method Not Allowed", "GET"},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.target, "")
		require.Equal(t, tt.status, rec.Code, tt.target)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), tt.target)
		assert.Equal(t, tt.detail, decode[api.ErrorResponse](t, rec).Detail, tt.target)
		if tt.allow != "" {
			assert.Contains(t, rec.Header().Get("Allow"), tt.allow, tt.target)
		}
	}
}

func TestGetRecord(t *testing.T) {
	h := newServer(t, testConfig())

	rec := do(t, h, http.MethodGet, "/api/emission-reports/namespace:transactional-data--EmissionReport:12346", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Q1 2025 emissions report", body["description"])
	assert.Equal(t, "2025-01-01T00:00:00Z", body["report_period_start"])

	rec = do(t, h, http.MethodGet, "/api/emission-reports/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Emission Report not found", decode[api.ErrorResponse](t, rec).Detail)
}

func TestCreateRecord(t *testing.T) {
	h := newServer(t, testConfig())

	rec := do(t, h, http.MethodPost, "/api/organizations/",
		`{"organization_pk":"namespace:master-data--Organization:99","name":"New Org"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "New Org", created["name"])
	assert.NotEmpty(t, created["created_at"])
	assert.Nil(t, created["updated_at"])

	rec = do(t, h, http.MethodGet, "/api/organizations", "")
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 4)
	assert.Equal(t, "New Org", list[3]["name"])

	rec = do(t, h, http.MethodPost, "/api/organizations",
		`{"organization_pk":"namespace:master-data--Organization:99","name":"Again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/organizations", `{"organization_pk":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "is required", decode[api.ErrorResponse](t, rec).Fields["name"])

	rec = do(t, h, http.MethodPost, "/api/organizations", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/organizations", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCSRDReport(t *testing.T) {
	h := newServer(t, testConfig())

	rec := do(t, h, http.MethodPost, "/api/csrd-reports", `{
		"csrd_report_pk": "csrd:new",
		"title": "New Report",
		"reporting_period_start": "2024-01-01",
		"reporting_period_end": "2024-12-31T00:00:00Z",
		"organization_id": "namespace:master-data--Organization:12345",
		"report_type": "Annual",
		"status": "Draft",
		"version": "1.0",
		"prepared_by": "Team",
		"emission_report_ids": ["namespace:transactional-data--EmissionReport:12345", "unknown"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, []any{"namespace:transactional-data--EmissionReport:12345"}, body["emission_report_ids"])
	assert.Equal(t, map[string]any{}, body["esrs_compliance"])
}

func TestValidateAndGenerate(t *testing.T) {
	h := newServer(t, testConfig())
	base := "/api/csrd-reports/namespace:transactional-data--CSRDReport:12345"

	rec := do(t, h, http.MethodGet, base+"/validate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.Equal(t, "passed", res["overall_status"])
	assert.Equal(t, "ESRS 2023", res["standards_version"])
	assert.Len(t, res["checks"], 3)

	rec = do(t, h, http.MethodGet, base+"/generate?format=pdf", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gen := decode[map[string]any](t, rec)
	assert.Equal(t, "success", gen["status"])
	assert.Equal(t, "CSRD report document generated in pdf format", gen["message"])

	rec = do(t, h, http.MethodGet, gen["download_url"].(string), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = do(t, h, http.MethodGet, base+"/generate?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/csrd-reports/missing/validate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CSRD Report not found", decode[api.ErrorResponse](t, rec).Detail)
}

func TestExcelExport(t *testing.T) {
	h := newServer(t, testConfig())

	rec := do(t, h, http.MethodGet, "/api/excel/emission-reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=emission_reports.xlsx", rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(t, h, http.MethodGet, "/api/excel/comprehensive-report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "openfootprint_comprehensive_report.xlsx")

	rec = do(t, h, http.MethodGet, "/api/excel/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard(t *testing.T) {
	h := newServer(t, testConfig())
	rec := do(t, h, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[catalog.Dashboard](t, rec)
	assert.Equal(t, 3, d.Counts.Organizations)
	assert.Len(t, d.RecentActivity, 5)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	h := newServer(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/organizations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}
	h := newServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/", "").Code)
	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Probes bypass the limiter.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestMetrics(t *testing.T) {
	h := newServer(t, testConfig())
	do(t, h, http.MethodGet, "/api/organizations", "")
	do(t, h, http.MethodGet, "/api/organizations/missing", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `openfootprint_http_requests_total{code="200",method="GET",route="GET /api/organizations"} 1`)
	assert.Contains(t, body, `route="GET /api/organizations/{pk}"`)
	assert.Contains(t, body, "openfootprint_http_request_duration_seconds")
}

func TestTraceHeaderPropagates(t *testing.T) {
	h := newServer(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(api.TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(api.TraceHeader))
}

func TestUIMount(t *testing.T) {
	ui := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ui:"+r.URL.Path)
	})
	h := newServer(t, testConfig(), api.WithUI(ui))

	rec := do(t, h, http.MethodGet, "/ui/organizations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ui:/ui/organizations", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/ui", "")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	defer s.Close()

	srv, err := api.New(catalog.New(s), testConfig())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(runCtx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
