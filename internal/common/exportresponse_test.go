package common

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jo-hoe/trademate/internal/export"
	"github.com/labstack/echo/v4"
)

type previewStoreFunc func(ctx context.Context, pdf []byte) (string, error)

func (f previewStoreFunc) StorePreview(ctx context.Context, pdf []byte) (string, error) {
	return f(ctx, pdf)
}

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestResponseOutput_Save(t *testing.T) {
	ctx, rec := newTestContext()
	out := NewResponseOutput(ctx, nil)

	if err := out.Save(context.Background(), "progress-report-weekly.pdf", []byte("%PDF-1.7")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != MimePDF {
		t.Errorf("unexpected response %d %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd != `attachment; filename="progress-report-weekly.pdf"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
}

func TestResponseOutput_Preview(t *testing.T) {
	ctx, _ := newTestContext()
	out := NewResponseOutput(ctx, previewStoreFunc(func(context.Context, []byte) (string, error) {
		return "abc", nil
	}))

	url, err := out.Preview(context.Background(), []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}
	if url != "/previews/abc" {
		t.Errorf("unexpected preview url %q", url)
	}
}

func TestExportError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notice     *Notice
		wantStatus int
		wantBody   string
	}{
		{"in progress", export.ErrInProgress, nil, http.StatusConflict, "An export of this kind is already running"},
		{"reported failure", export.ErrCapture, &Notice{Message: "custom"}, http.StatusInternalServerError, "custom"},
		{"unreported failure", errors.New("boom"), &Notice{}, http.StatusInternalServerError, export.FailureMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newTestContext()
			if err := ExportError(ctx, tt.err, tt.notice); err != nil {
				t.Fatalf("ExportError error: %v", err)
			}
			if rec.Code != tt.wantStatus || rec.Body.String() != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantStatus, tt.wantBody)
			}
		})
	}
}

func TestExportError_CommittedResponseIsLeftAlone(t *testing.T) {
	ctx, rec := newTestContext()
	if err := ctx.Blob(http.StatusOK, MimePDF, []byte("%PDF-1.7")); err != nil {
		t.Fatalf("Blob error: %v", err)
	}

	if err := ExportError(ctx, errors.New("connection reset"), &Notice{Message: export.FailureMessage}); err != nil {
		t.Fatalf("ExportError error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status changed to %d", rec.Code)
	}
	if rec.Body.String() != "%PDF-1.7" {
		t.Errorf("body changed to %q", rec.Body.String())
	}
}
