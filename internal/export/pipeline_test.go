package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jo-hoe/trademate/internal/surface"
)

type memoryOutput struct {
	saved    map[string][]byte
	previews [][]byte
}

func newMemoryOutput() *memoryOutput {
	return &memoryOutput{saved: make(map[string][]byte)}
}

func (o *memoryOutput) Save(_ context.Context, filename string, pdf []byte) error {
	o.saved[filename] = pdf
	return nil
}

func (o *memoryOutput) Preview(_ context.Context, pdf []byte) (string, error) {
	o.previews = append(o.previews, pdf)
	return "/previews/1", nil
}

func (o *memoryOutput) outputs() int {
	return len(o.saved) + len(o.previews)
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 15, 14, 5, 9, 0, time.UTC)
}

func TestFilename(t *testing.T) {
	if got := Filename("weekly"); got != "progress-report-weekly.pdf" {
		t.Errorf("Filename(weekly) = %q", got)
	}
}

func TestExporter_Download(t *testing.T) {
	w := &recordingWriter{}
	e := NewExporter(NewRasterizer(WithScale(1)), WithDocumentWriter(w), WithClock(fixedClock))
	out := newMemoryOutput()

	// 100x400 at scale 1 spans three pages
	result, err := e.Export(context.Background(), ExportRequest{Granularity: "weekly"}, surface.New(100, 400), out)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if result.Filename != "progress-report-weekly.pdf" || result.PageCount != 3 {
		t.Errorf("unexpected result %+v", result)
	}
	if _, ok := out.saved["progress-report-weekly.pdf"]; !ok || out.outputs() != 1 {
		t.Errorf("expected one saved download, got %v saved and %d previews", len(out.saved), len(out.previews))
	}

	last := w.pages[len(w.pages)-1]
	found := false
	for _, f := range last.Footers {
		if f.Text == "Generated: 10/15/2026, 2:05:09 PM" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected generated footer on the last page, got %+v", last.Footers)
	}
}

func TestExporter_Preview(t *testing.T) {
	e := NewExporter(NewRasterizer(WithScale(1)), WithDocumentWriter(&recordingWriter{}))
	out := newMemoryOutput()

	result, err := e.Export(context.Background(), ExportRequest{Granularity: "daily", OpenInPreview: true}, surface.New(50, 50), out)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if result.PreviewURL != "/previews/1" {
		t.Errorf("unexpected preview url %q", result.PreviewURL)
	}
	if len(out.previews) != 1 || len(out.saved) != 0 {
		t.Errorf("expected only a preview, got %d saved and %d previews", len(out.saved), len(out.previews))
	}
}

func TestExporter_Timezone(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	w := &recordingWriter{}
	e := NewExporter(NewRasterizer(WithScale(1)),
		WithDocumentWriter(w), WithClock(fixedClock), WithTimestamp(loc, time.RFC3339))

	if _, err := e.Export(context.Background(), ExportRequest{Granularity: "daily"}, surface.New(50, 50), newMemoryOutput()); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if got := w.pages[0].Footers[0].Text; got != "Generated: 2026-10-15T16:05:09+02:00" {
		t.Errorf("unexpected generated footer %q", got)
	}
}

func TestExporter_FailureContainment(t *testing.T) {
	detached := surface.New(100, 100)
	detached.Detached = true

	tests := []struct {
		name    string
		surface *surface.Surface
		writer  DocumentWriter
		want    error
	}{
		{"capture failure", detached, &recordingWriter{}, ErrCapture},
		{"encoding failure", surface.New(100, 100), &recordingWriter{err: errors.New("boom")}, ErrEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExporter(NewRasterizer(WithScale(1)), WithDocumentWriter(tt.writer))
			out := newMemoryOutput()
			control := &Control{}
			n := &countingNotifier{}

			err := control.Run(context.Background(), n, func(ctx context.Context) error {
				_, err := e.Export(ctx, ExportRequest{Granularity: "weekly"}, tt.surface, out)
				return err
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if out.outputs() != 0 {
				t.Errorf("expected no output artifacts, got %d", out.outputs())
			}
			if len(n.messages) != 1 || n.messages[0] != FailureMessage {
				t.Errorf("expected one failure notification, got %v", n.messages)
			}
			if control.Loading() {
				t.Error("expected loading to be reset")
			}
		})
	}
}

func TestExporter_WritesRealPDF(t *testing.T) {
	dir := t.TempDir()
	s := surface.New(300, 700)
	s.Add(surface.Rect{X: 10, Y: 10, W: 280, H: 680, Fill: "#2563eb"})
	s.Add(surface.Text{X: 20, Y: 40, Content: "WEEKLY Progress", Size: 16, Bold: true})

	e := NewExporter(NewRasterizer())
	result, err := e.Export(context.Background(), ExportRequest{Granularity: "weekly"}, s, &FileOutput{Dir: dir})
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if result.PageCount < 2 {
		t.Errorf("expected a multi-page document, got %d pages", result.PageCount)
	}
	data, err := os.ReadFile(filepath.Join(dir, "progress-report-weekly.pdf"))
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if len(data) != result.SizeBytes {
		t.Errorf("file has %d bytes, result reports %d", len(data), result.SizeBytes)
	}
}

func TestFileOutput_Preview(t *testing.T) {
	url, err := (&FileOutput{}).Preview(context.Background(), []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}
	if !strings.HasPrefix(url, "file://") || !strings.HasSuffix(url, ".pdf") {
		t.Errorf("unexpected preview url %q", url)
	}
	path := strings.TrimPrefix(url, "file://")
	t.Cleanup(func() { _ = os.Remove(path) })
	if _, err := os.Stat(path); err != nil {
		t.Errorf("preview file missing: %v", err)
	}
}
