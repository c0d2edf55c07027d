package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jo-hoe/trademate/internal/common"
	"github.com/jo-hoe/trademate/internal/core"
	"github.com/labstack/echo/v4"
)

func newTestAPI(t *testing.T) *echo.Echo {
	t.Helper()

	config := core.DefaultConfig()
	config.Database.ConnectionString = ":memory:"
	config.Export.Scale = 0.5
	config.Report.SeedSamples = false

	coreService := core.NewCoreService(config)
	t.Cleanup(func() { _ = coreService.Close() })

	e := echo.New()
	e.Validator = &common.GenericEchoValidator{}
	NewAPIService(config, coreService).SetRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) ReportResponse {
	t.Helper()
	var resp ReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestProbe(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/probe", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReplaceAndGetReport(t *testing.T) {
	e := newTestAPI(t)

	rec := doRequest(e, http.MethodPut, "/api/reports/weekly",
		`{"samples":[{"label":"Week 1","value":10},{"label":"Week 2","value":20},{"label":"Week 3","value":21}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeReport(t, doRequest(e, http.MethodGet, "/api/reports/weekly", ""))
	if resp.Granularity != "weekly" || resp.Entries != 3 || resp.Total != 51 || resp.Average != 17 {
		t.Errorf("unexpected report %+v", resp)
	}
}

func TestGetReport_Empty(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/reports/daily", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"samples":[]`) {
		t.Errorf("expected an empty sample list, got %s", rec.Body.String())
	}
}

func TestReplaceSamples_Invalid(t *testing.T) {
	e := newTestAPI(t)
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"unknown granularity", "/api/reports/yearly", `{"samples":[]}`},
		{"missing label", "/api/reports/daily", `{"samples":[{"value":1}]}`},
		{"duplicate label", "/api/reports/daily", `{"samples":[{"label":"a","value":1},{"label":"a","value":2}]}`},
		{"malformed", "/api/reports/daily", `{"samples":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doRequest(e, http.MethodPut, tt.target, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSampleEditing(t *testing.T) {
	e := newTestAPI(t)
	doRequest(e, http.MethodPut, "/api/reports/monthly", `{"samples":[{"label":"Jan","value":5},{"label":"Feb","value":7}]}`)

	if rec := doRequest(e, http.MethodPost, "/api/reports/monthly/samples", `{"label":"Mar","value":9}`); rec.Code != http.StatusOK {
		t.Fatalf("append: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodPost, "/api/reports/monthly/samples", `{"label":"Mar","value":1}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate append: expected 409, got %d", rec.Code)
	}

	rec := doRequest(e, http.MethodPut, "/api/reports/monthly/order", `{"labels":["Mar","Jan","Feb"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeReport(t, rec); resp.Samples[0].Label != "Mar" {
		t.Errorf("expected Mar first, got %+v", resp.Samples)
	}

	if rec := doRequest(e, http.MethodDelete, "/api/reports/monthly/samples/Jan", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodDelete, "/api/reports/monthly/samples/Jan", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}

	resp := decodeReport(t, doRequest(e, http.MethodGet, "/api/reports/monthly", ""))
	if resp.Entries != 2 || resp.Total != 16 {
		t.Errorf("unexpected report %+v", resp)
	}
}

func TestExportHandler_Download(t *testing.T) {
	e := newTestAPI(t)
	doRequest(e, http.MethodPut, "/api/reports/weekly", `{"samples":[{"label":"Week 1","value":10}]}`)

	rec := doRequest(e, http.MethodPost, "/api/exports", `{"granularity":"weekly","openInPreview":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "progress-report-weekly.pdf") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("expected a PDF body")
	}
}

func TestExportHandler_Preview(t *testing.T) {
	e := newTestAPI(t)

	rec := doRequest(e, http.MethodPost, "/api/exports", `{"granularity":"daily","openInPreview":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(resp.URL, common.PreviewPath) {
		t.Errorf("unexpected preview URL %q", resp.URL)
	}
}

func TestExportHandler_InvalidRequest(t *testing.T) {
	e := newTestAPI(t)
	for _, body := range []string{`{"granularity":"yearly"}`, `{}`, `not json`} {
		if rec := doRequest(e, http.MethodPost, "/api/exports", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}
