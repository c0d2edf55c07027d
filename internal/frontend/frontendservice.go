package frontend

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/trademate/internal/backend/preview"
	"github.com/jo-hoe/trademate/internal/common"
	"github.com/jo-hoe/trademate/internal/core"
	"github.com/jo-hoe/trademate/internal/export"
	"github.com/jo-hoe/trademate/internal/report"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName = "index.html"
	mimePNG      = "image/png"
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

// reportView is the data behind the report partial.
type reportView struct {
	Granularity string
	Samples     []report.Sample
	Total       int
	Average     int
	Entries     int
}

type indexView struct {
	Granularities []string
	Selected      string
	Report        reportView
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	// Create template renderer
	e.Renderer = &Template{
		templates: template.Must(template.New("").ParseFS(templateFS, viewsPattern)),
	}

	e.GET("/", service.rootRedirectHandler) // Redirect root to index.html
	e.GET("/"+MainPageName, service.indexHandler)
	e.GET("/htmx/report", service.htmxReportHandler)

	// Export triggers
	e.GET("/reports/:granularity/view", service.viewHandler)
	e.GET("/reports/:granularity/download", service.downloadHandler)
	e.GET(common.PreviewPath+":id", service.previewHandler)

	e.GET("/icon.svg", service.iconHandler)
	e.GET("/static/logo.png", service.logoHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	g := report.Weekly
	if q := ctx.QueryParam("granularity"); q != "" {
		parsed, err := report.ParseGranularity(q)
		if err != nil {
			return ctx.String(http.StatusBadRequest, err.Error())
		}
		g = parsed
	}

	view, err := service.reportView(ctx, g)
	if err != nil {
		slog.Error("indexHandler: failed to load report", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load report")
	}

	granularities := make([]string, len(report.Granularities))
	for i, gr := range report.Granularities {
		granularities[i] = gr.String()
	}
	return ctx.Render(http.StatusOK, MainPageName, indexView{
		Granularities: granularities,
		Selected:      g.String(),
		Report:        view,
	})
}

func (service *FrontendService) htmxReportHandler(ctx echo.Context) error {
	g, err := report.ParseGranularity(ctx.QueryParam("granularity"))
	if err != nil {
		return ctx.String(http.StatusBadRequest, err.Error())
	}
	view, err := service.reportView(ctx, g)
	if err != nil {
		slog.Error("htmxReportHandler: failed to load report", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load report")
	}

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "report", view)
}

func (service *FrontendService) reportView(ctx echo.Context, g report.Granularity) (reportView, error) {
	d, err := service.coreService.Dataset(ctx.Request().Context(), g)
	if err != nil {
		return reportView{}, err
	}
	return reportView{
		Granularity: g.String(),
		Samples:     d.Samples,
		Total:       d.Total(),
		Average:     d.Average(),
		Entries:     d.Entries(),
	}, nil
}

// viewHandler backs the "View PDF" trigger.
func (service *FrontendService) viewHandler(ctx echo.Context) error {
	result, err := service.runExport(ctx, true)
	if err != nil || result == nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, result.PreviewURL)
}

// downloadHandler backs the "Export All (PDF)" trigger. The document is written by the output.
func (service *FrontendService) downloadHandler(ctx echo.Context) error {
	_, err := service.runExport(ctx, false)
	return err
}

// runExport runs one export for the route's granularity. A nil result with a nil error
// means the failure response has already been written.
func (service *FrontendService) runExport(ctx echo.Context, openInPreview bool) (*export.Result, error) {
	g, err := report.ParseGranularity(ctx.Param("granularity"))
	if err != nil {
		return nil, ctx.String(http.StatusBadRequest, err.Error())
	}

	notice := &common.Notice{}
	req := export.ExportRequest{Granularity: g.String(), OpenInPreview: openInPreview}
	out := common.NewResponseOutput(ctx, service.coreService)
	result, err := service.coreService.Export(ctx.Request().Context(), ctx.RealIP(), req, out, notice)
	if err != nil {
		slog.Warn("export trigger failed", "granularity", g, "preview", openInPreview, "error", err)
		return nil, common.ExportError(ctx, err, notice)
	}
	return result, nil
}

func (service *FrontendService) previewHandler(ctx echo.Context) error {
	pdf, err := service.coreService.TakePreview(ctx.Request().Context(), ctx.Param("id"))
	if errors.Is(err, preview.ErrNotFound) {
		return ctx.String(http.StatusNotFound, "Preview not found")
	}
	if err != nil {
		slog.Error("previewHandler: failed to load preview", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load preview")
	}

	// the preview is released after this response
	service.setNoCache(ctx)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "inline")
	return ctx.Blob(http.StatusOK, common.MimePDF, pdf)
}

// setNoCache sets headers to prevent caching
func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}

func (service *FrontendService) logoHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("static/logo.png")
	if err != nil {
		slog.Error("logoHandler: failed to read logo.png", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load logo")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, mimePNG, data)
}
