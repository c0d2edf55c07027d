package backend

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/trademate/internal/backend/database"
	"github.com/jo-hoe/trademate/internal/common"
	"github.com/jo-hoe/trademate/internal/core"
	"github.com/jo-hoe/trademate/internal/export"
	"github.com/jo-hoe/trademate/internal/report"

	"github.com/labstack/echo/v4"
)

type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
}

// ReportResponse is the JSON form of a dataset and its summary.
type ReportResponse struct {
	Granularity string          `json:"granularity"`
	Samples     []report.Sample `json:"samples"`
	Total       int             `json:"total"`
	Average     int             `json:"average"`
	Entries     int             `json:"entries"`
}

type ReplaceSamplesRequest struct {
	Samples []report.Sample `json:"samples" validate:"dive"`
}

type ReorderSamplesRequest struct {
	Labels []string `json:"labels" validate:"required,dive,required"`
}

type PreviewResponse struct {
	URL string `json:"url"`
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "API Service is running")
	})

	e.GET("/api/reports/:granularity", s.getReportHandler)
	e.PUT("/api/reports/:granularity", s.replaceSamplesHandler)
	e.POST("/api/reports/:granularity/samples", s.appendSampleHandler)
	e.DELETE("/api/reports/:granularity/samples/:label", s.deleteSampleHandler)
	e.PUT("/api/reports/:granularity/order", s.reorderSamplesHandler)

	e.POST("/api/exports", s.exportHandler)
}

func granularityParam(ctx echo.Context) (report.Granularity, error) {
	g, err := report.ParseGranularity(ctx.Param("granularity"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return g, nil
}

// bindAndValidate decodes the JSON body into req and runs the echo validator on it.
func bindAndValidate(ctx echo.Context, req interface{}) error {
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "received malformed request body")
	}
	return ctx.Validate(req)
}

// sampleError maps store errors to HTTP errors.
func sampleError(err error) error {
	switch {
	case errors.Is(err, database.ErrSampleNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrDuplicateLabel):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		slog.Error("failed to update samples", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update samples")
	}
}

func (s *APIService) reportResponse(ctx echo.Context, g report.Granularity) error {
	d, err := s.coreService.Dataset(ctx.Request().Context(), g)
	if err != nil {
		slog.Error("failed to load dataset", "granularity", g, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load report")
	}
	samples := d.Samples
	if samples == nil {
		samples = []report.Sample{}
	}
	return ctx.JSON(http.StatusOK, ReportResponse{
		Granularity: g.String(),
		Samples:     samples,
		Total:       d.Total(),
		Average:     d.Average(),
		Entries:     d.Entries(),
	})
}

func (s *APIService) getReportHandler(ctx echo.Context) error {
	g, err := granularityParam(ctx)
	if err != nil {
		return err
	}
	return s.reportResponse(ctx, g)
}

func (s *APIService) replaceSamplesHandler(ctx echo.Context) error {
	g, err := granularityParam(ctx)
	if err != nil {
		return err
	}
	req := new(ReplaceSamplesRequest)
	if err := bindAndValidate(ctx, req); err != nil {
		return err
	}
	if _, err := report.NewDataset(g, req.Samples); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.coreService.ReplaceSamples(ctx.Request().Context(), g, req.Samples); err != nil {
		return sampleError(err)
	}
	slog.Info("replaced samples", "granularity", g, "entries", len(req.Samples))
	return s.reportResponse(ctx, g)
}

func (s *APIService) appendSampleHandler(ctx echo.Context) error {
	g, err := granularityParam(ctx)
	if err != nil {
		return err
	}
	sample := new(report.Sample)
	if err := bindAndValidate(ctx, sample); err != nil {
		return err
	}

	if err := s.coreService.AppendSample(ctx.Request().Context(), g, *sample); err != nil {
		return sampleError(err)
	}
	return s.reportResponse(ctx, g)
}

func (s *APIService) deleteSampleHandler(ctx echo.Context) error {
	g, err := granularityParam(ctx)
	if err != nil {
		return err
	}
	if err := s.coreService.DeleteSample(ctx.Request().Context(), g, ctx.Param("label")); err != nil {
		return sampleError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *APIService) reorderSamplesHandler(ctx echo.Context) error {
	g, err := granularityParam(ctx)
	if err != nil {
		return err
	}
	req := new(ReorderSamplesRequest)
	if err := bindAndValidate(ctx, req); err != nil {
		return err
	}

	if err := s.coreService.ReorderSamples(ctx.Request().Context(), g, req.Labels); err != nil {
		if errors.Is(err, database.ErrSampleNotFound) || errors.Is(err, database.ErrDuplicateLabel) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return sampleError(err)
	}
	return s.reportResponse(ctx, g)
}

// exportHandler answers download requests with the document itself and preview
// requests with the URL the document can be opened at once.
func (s *APIService) exportHandler(ctx echo.Context) error {
	req := new(export.ExportRequest)
	if err := bindAndValidate(ctx, req); err != nil {
		return err
	}

	notice := &common.Notice{}
	out := common.NewResponseOutput(ctx, s.coreService)
	result, err := s.coreService.Export(ctx.Request().Context(), ctx.RealIP(), *req, out, notice)
	if err != nil {
		slog.Warn("export request failed", "granularity", req.Granularity, "preview", req.OpenInPreview, "error", err)
		return common.ExportError(ctx, err, notice)
	}
	if req.OpenInPreview {
		return ctx.JSON(http.StatusOK, PreviewResponse{URL: result.PreviewURL})
	}
	return nil
}
