package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jo-hoe/trademate/internal/backend/database"
	"github.com/jo-hoe/trademate/internal/backend/preview"
	"github.com/jo-hoe/trademate/internal/export"
	"github.com/jo-hoe/trademate/internal/report"
	"github.com/jo-hoe/trademate/internal/surface"
)

// Trigger names the UI control that started an export.
type Trigger string

const (
	TriggerView     Trigger = "view"
	TriggerDownload Trigger = "download"
)

// TriggerOf maps a request to the trigger that issues it.
func TriggerOf(req export.ExportRequest) Trigger {
	if req.OpenInPreview {
		return TriggerView
	}
	return TriggerDownload
}

type Option func(*options)

type options struct {
	assets fs.FS
	now    func() time.Time
	writer export.DocumentWriter
}

// WithAssets resolves same-origin images referenced by the report, such as a local logo.
func WithAssets(assets fs.FS) Option {
	return func(o *options) { o.assets = assets }
}

// WithClock replaces the time source of report headers and footers.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDocumentWriter replaces the PDF writer of the exporter.
func WithDocumentWriter(w export.DocumentWriter) Option {
	return func(o *options) { o.writer = w }
}

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	previewStore    preview.Store
	exporter        *export.Exporter
	controls        *export.ControlSet
	now             func() time.Time
}

func NewCoreService(config *ServiceConfig, opts ...Option) *CoreService {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	databaseService, err := getDatabaseService(config)
	if err != nil {
		slog.Error("failed to initialize database service", "error", err)
		panic(err)
	}
	previewStore, err := preview.NewStore(config.Preview.Type, config.Preview.Address, config.Preview.TTL())
	if err != nil {
		slog.Error("failed to initialize preview store", "error", err)
		_ = databaseService.Close()
		panic(err)
	}

	service := &CoreService{
		config:          config,
		databaseService: databaseService,
		previewStore:    previewStore,
		exporter:        newExporter(config, o),
		controls:        export.NewControlSet(),
		now:             o.now,
	}

	if config.Report.SeedSamples {
		if err := service.seedSamples(context.Background()); err != nil {
			slog.Error("failed to seed sample data", "error", err)
			_ = service.Close()
			panic(err)
		}
	}
	return service
}

func newExporter(config *ServiceConfig, o options) *export.Exporter {
	rasterOpts := []export.RasterOption{
		export.WithScale(config.Export.Scale),
		export.WithJPEGQuality(config.Export.JPEGQuality),
		export.WithCrossOrigin(config.Report.AllowCrossOrigin),
	}
	if o.assets != nil {
		rasterOpts = append(rasterOpts, export.WithAssets(o.assets))
	}

	exporterOpts := []export.ExporterOption{
		export.WithGeometry(config.Export.Geometry()),
		export.WithTimestamp(config.Export.Location(), config.Export.TimestampFormat),
		export.WithClock(o.now),
	}
	if o.writer != nil {
		exporterOpts = append(exporterOpts, export.WithDocumentWriter(o.writer))
	}
	return export.NewExporter(export.NewRasterizer(rasterOpts...), exporterOpts...)
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

// seedSamples fills every empty granularity with generated placeholder data.
func (service *CoreService) seedSamples(ctx context.Context) error {
	rng := rand.New(rand.NewPCG(uint64(service.now().UnixNano()), 0x7ade))
	for _, g := range report.Granularities {
		count, err := service.databaseService.CountSamples(ctx, g)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		samples := report.SampleData(g, rng)
		if err := service.databaseService.ReplaceSamples(ctx, g, samples); err != nil {
			return err
		}
		slog.Info("seeded sample data", "granularity", g, "entries", len(samples))
	}
	return nil
}

func (service *CoreService) Dataset(ctx context.Context, g report.Granularity) (*report.Dataset, error) {
	return report.Load(ctx, service.databaseService, g)
}

func (service *CoreService) ReplaceSamples(ctx context.Context, g report.Granularity, samples []report.Sample) error {
	return service.databaseService.ReplaceSamples(ctx, g, samples)
}

func (service *CoreService) AppendSample(ctx context.Context, g report.Granularity, sample report.Sample) error {
	return service.databaseService.AppendSample(ctx, g, sample)
}

func (service *CoreService) DeleteSample(ctx context.Context, g report.Granularity, label string) error {
	return service.databaseService.DeleteSample(ctx, g, label)
}

func (service *CoreService) ReorderSamples(ctx context.Context, g report.Granularity, labels []string) error {
	return service.databaseService.ReorderSamples(ctx, g, labels)
}

// GeneratedAt formats the current time the way report headers and footers show it.
func (service *CoreService) GeneratedAt() string {
	return service.now().In(service.config.Export.Location()).Format(service.config.Export.TimestampFormat)
}

// Surface lays out the report of g.
func (service *CoreService) Surface(ctx context.Context, g report.Granularity) (*surface.Surface, error) {
	dataset, err := service.Dataset(ctx, g)
	if err != nil {
		return nil, err
	}
	return report.Layout(dataset, report.Options{
		Width:       service.config.Report.SurfaceWidth,
		GeneratedAt: service.GeneratedAt(),
		PreparedFor: service.config.Report.PreparedFor,
		LogoURL:     service.config.Report.LogoURL,
		Metrics:     service.config.Report.ReportMetrics(),
	}), nil
}

// Export runs one export for the given client. A trigger of the same client that is
// still loading rejects the request with export.ErrInProgress. Failures reach n once.
func (service *CoreService) Export(ctx context.Context, client string, req export.ExportRequest, out export.Output, n export.Notifier) (*export.Result, error) {
	g, err := report.ParseGranularity(req.Granularity)
	if err != nil {
		return nil, err
	}

	key := client + "/" + string(TriggerOf(req))
	var result *export.Result
	err = service.controls.Run(ctx, key, n, func(ctx context.Context) error {
		s, err := service.Surface(ctx, g)
		if err != nil {
			return err
		}
		result, err = service.exporter.Export(ctx, req, s, out)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (service *CoreService) StorePreview(ctx context.Context, pdf []byte) (string, error) {
	return service.previewStore.Put(ctx, pdf)
}

func (service *CoreService) TakePreview(ctx context.Context, id string) ([]byte, error) {
	return service.previewStore.Take(ctx, id)
}

func (service *CoreService) Close() error {
	return errors.Join(service.previewStore.Close(), service.databaseService.Close())
}
