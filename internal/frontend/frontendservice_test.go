package frontend

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jo-hoe/trademate/internal/core"
	"github.com/jo-hoe/trademate/internal/export"
	"github.com/labstack/echo/v4"
)

type failingWriter struct{}

func (failingWriter) Write(export.PageGeometry, []export.Page) ([]byte, error) {
	return nil, http.ErrHandlerTimeout
}

func newTestServer(t *testing.T, opts ...core.Option) *echo.Echo {
	t.Helper()

	config := core.DefaultConfig()
	config.Database.ConnectionString = ":memory:"
	config.Export.Scale = 0.5
	config.Report.LogoURL = "/static/logo.png"

	coreService := core.NewCoreService(config, append([]core.Option{core.WithAssets(Assets())}, opts...)...)
	t.Cleanup(func() { _ = coreService.Close() })

	e := echo.New()
	NewFrontendService(config, coreService).SetRoutes(e)
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRootRedirect(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/index.html" {
		t.Errorf("expected redirect to /index.html, got %q", loc)
	}
}

func TestIndexHandler(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/index.html?granularity=monthly")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"View PDF",
		"Export All (PDF)",
		`href="/reports/monthly/view"`,
		`href="/reports/monthly/download"`,
		`<option value="monthly" selected>`,
		"Jun",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestIndexHandler_UnknownGranularity(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/index.html?granularity=yearly")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHtmxReportHandler(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/htmx/report?granularity=daily")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Day 7") {
		t.Error("expected daily samples in the partial")
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Error("expected no-cache headers")
	}
}

func TestDownloadHandler(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/reports/weekly/download")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd != `attachment; filename="progress-report-weekly.pdf"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("expected a PDF body")
	}
}

func TestViewHandler_PreviewIsServedOnce(t *testing.T) {
	e := newTestServer(t)

	rec := serve(e, http.MethodGet, "/reports/daily/view")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get(echo.HeaderLocation)
	if !strings.HasPrefix(location, "/previews/") {
		t.Fatalf("unexpected preview location %q", location)
	}

	first := serve(e, http.MethodGet, location)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 for the first fetch, got %d", first.Code)
	}
	if cd := first.Header().Get(echo.HeaderContentDisposition); cd != "inline" {
		t.Errorf("expected inline disposition, got %q", cd)
	}
	if !strings.HasPrefix(first.Body.String(), "%PDF") {
		t.Error("expected a PDF body")
	}

	second := serve(e, http.MethodGet, location)
	if second.Code != http.StatusNotFound {
		t.Errorf("expected 404 once the preview was opened, got %d", second.Code)
	}
}

func TestExportTriggers_UnknownGranularity(t *testing.T) {
	e := newTestServer(t)
	for _, target := range []string{"/reports/yearly/view", "/reports/yearly/download"} {
		if rec := serve(e, http.MethodGet, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestExportTriggers_FailureMessage(t *testing.T) {
	e := newTestServer(t, core.WithDocumentWriter(failingWriter{}))

	rec := serve(e, http.MethodGet, "/reports/weekly/download")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != export.FailureMessage {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderContentDisposition) != "" {
		t.Error("expected no attachment on failure")
	}
}

func TestStaticAssets(t *testing.T) {
	e := newTestServer(t)

	icon := serve(e, http.MethodGet, "/icon.svg")
	if icon.Code != http.StatusOK || icon.Header().Get(echo.HeaderContentType) != "image/svg+xml" {
		t.Errorf("unexpected icon response %d %q", icon.Code, icon.Header().Get(echo.HeaderContentType))
	}
	logo := serve(e, http.MethodGet, "/static/logo.png")
	if logo.Code != http.StatusOK || logo.Header().Get(echo.HeaderContentType) != mimePNG {
		t.Errorf("unexpected logo response %d %q", logo.Code, logo.Header().Get(echo.HeaderContentType))
	}
}
