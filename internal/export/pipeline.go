package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/trademate/internal/surface"
)

// DefaultTimestampFormat renders the generation time as month/day/year with a 12 hour clock.
const DefaultTimestampFormat = "1/2/2006, 3:04:05 PM"

// ExportRequest is one user-triggered export. It is consumed by a single run and never stored.
type ExportRequest struct {
	Granularity   string `json:"granularity" validate:"required,oneof=daily weekly monthly"`
	OpenInPreview bool   `json:"openInPreview"`
}

// Filename returns the download name of a report of the given granularity.
func Filename(granularity string) string {
	return fmt.Sprintf("progress-report-%s.pdf", granularity)
}

// Output receives the finished document. Exactly one method is called per successful run
// and none on failure.
type Output interface {
	Save(ctx context.Context, filename string, pdf []byte) error
	Preview(ctx context.Context, pdf []byte) (url string, err error)
}

// Result describes a completed export.
type Result struct {
	Filename   string
	PageCount  int
	SizeBytes  int
	PreviewURL string
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithGeometry sets the page geometry.
func WithGeometry(g PageGeometry) ExporterOption {
	return func(e *Exporter) { e.geometry = g }
}

// WithDocumentWriter replaces the PDF writer.
func WithDocumentWriter(w DocumentWriter) ExporterOption {
	return func(e *Exporter) { e.writer = w }
}

// WithClock sets the time source used for the generated timestamp.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) { e.now = now }
}

// WithTimestamp sets the zone and layout of the generated timestamp.
func WithTimestamp(loc *time.Location, layout string) ExporterOption {
	return func(e *Exporter) {
		e.location = loc
		e.timestampFormat = layout
	}
}

// Exporter runs the capture, pagination, assembly and output steps of one export.
type Exporter struct {
	rasterizer      *Rasterizer
	geometry        PageGeometry
	writer          DocumentWriter
	now             func() time.Time
	location        *time.Location
	timestampFormat string
}

// NewExporter creates an exporter for A4 portrait pages writing PDF.
func NewExporter(rasterizer *Rasterizer, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		rasterizer:      rasterizer,
		geometry:        A4Portrait,
		now:             time.Now,
		location:        time.UTC,
		timestampFormat: DefaultTimestampFormat,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.writer == nil {
		e.writer = NewPDFWriter()
	}
	return e
}

// Export turns the surface into a document and hands it to out. Nothing reaches out
// unless every step before it succeeded.
func (e *Exporter) Export(ctx context.Context, req ExportRequest, s *surface.Surface, out Output) (*Result, error) {
	start := time.Now()

	raster, err := e.rasterizer.Capture(ctx, s)
	if err != nil {
		return nil, err
	}

	pageSlices, err := NewPaginator(e.geometry, e.rasterizer.JPEGQuality()).Paginate(raster)
	if err != nil {
		return nil, err
	}

	layout, err := Place(e.geometry, pageSlices)
	if err != nil {
		return nil, err
	}

	doc := Annotate(layout, e.timestamp())
	pdf, err := doc.Finalize(e.writer)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Filename:  Filename(req.Granularity),
		PageCount: doc.PageCount(),
		SizeBytes: len(pdf),
	}
	if req.OpenInPreview {
		url, err := out.Preview(ctx, pdf)
		if err != nil {
			return nil, fmt.Errorf("failed to open preview: %w", err)
		}
		result.PreviewURL = url
	} else if err := out.Save(ctx, result.Filename, pdf); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", result.Filename, err)
	}

	slog.Info("report exported",
		"granularity", req.Granularity,
		"preview", req.OpenInPreview,
		"page_count", result.PageCount,
		"output_size_bytes", result.SizeBytes,
		"duration", time.Since(start))
	return result, nil
}

func (e *Exporter) timestamp() string {
	return e.now().In(e.location).Format(e.timestampFormat)
}
