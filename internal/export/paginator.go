package export

import (
	"fmt"
	"log/slog"

	"github.com/jo-hoe/trademate/internal/backend/imageprocessing"
)

// PageSlice is a full-width band of a RasterImage sized to one page's usable area.
type PageSlice struct {
	Source     *RasterImage
	StartRowPx int
	HeightPx   int
	// Pixels is the encoded band; for an unsliced image it is the source encoding itself.
	Pixels []byte
}

// SliceSpan is the row range of one slice before any pixels are touched.
type SliceSpan struct {
	StartRowPx int
	HeightPx   int
}

// PlanSlices splits heightPx rows into contiguous spans of at most sliceHeightPx rows.
// Only the final span may be shorter; the spans always sum to heightPx.
func PlanSlices(heightPx, sliceHeightPx int) []SliceSpan {
	if heightPx <= 0 || sliceHeightPx <= 0 {
		return nil
	}
	spans := make([]SliceSpan, 0, (heightPx+sliceHeightPx-1)/sliceHeightPx)
	for start := 0; start < heightPx; start += sliceHeightPx {
		h := sliceHeightPx
		if remaining := heightPx - start; remaining < h {
			h = remaining
		}
		spans = append(spans, SliceSpan{StartRowPx: start, HeightPx: h})
	}
	return spans
}

// Paginator cuts a raster into page-sized slices.
type Paginator struct {
	page    PageGeometry
	quality int
}

// NewPaginator creates a paginator for the given page geometry.
func NewPaginator(page PageGeometry, jpegQuality int) *Paginator {
	return &Paginator{page: page, quality: jpegQuality}
}

// FitsOnePage reports whether the image, shown at the usable page width, fits the usable height.
func (p *Paginator) FitsOnePage(raster *RasterImage) bool {
	return p.page.DisplayHeight(raster.WidthPx, raster.HeightPx) <= p.page.UsableHeight()
}

// Paginate returns one slice per page. An image that fits one page is passed through
// untouched; otherwise every band is cropped from the source and re-encoded.
func (p *Paginator) Paginate(raster *RasterImage) ([]PageSlice, error) {
	if raster == nil || raster.WidthPx <= 0 || raster.HeightPx <= 0 {
		return nil, fmt.Errorf("%w: empty raster", ErrEncoding)
	}

	if p.FitsOnePage(raster) {
		slog.Debug("raster fits one page, skipping pagination",
			"height_mm", p.page.DisplayHeight(raster.WidthPx, raster.HeightPx),
			"usable_height_mm", p.page.UsableHeight())
		return []PageSlice{{
			Source:     raster,
			StartRowPx: 0,
			HeightPx:   raster.HeightPx,
			Pixels:     raster.Pixels,
		}}, nil
	}

	if raster.canvas == nil {
		return nil, fmt.Errorf("%w: raster has no decoded canvas to slice", ErrEncoding)
	}

	sliceHeight := p.page.SliceHeight(raster.WidthPx)
	spans := PlanSlices(raster.HeightPx, sliceHeight)

	slog.Debug("paginating raster",
		"raster_height", raster.HeightPx,
		"slice_height", sliceHeight,
		"slice_count", len(spans))

	slices := make([]PageSlice, 0, len(spans))
	for i, span := range spans {
		crop, err := imageprocessing.NewCropRowsCommand(span.StartRowPx, span.HeightPx)
		if err != nil {
			return nil, fmt.Errorf("%w: slice %d: %w", ErrEncoding, i, err)
		}
		band, err := imageprocessing.NewCommandInvoker(crop).Execute(raster.canvas)
		if err != nil {
			return nil, fmt.Errorf("%w: slice %d: %w", ErrEncoding, i, err)
		}
		pixels, err := encodeJPEG(band, p.quality)
		if err != nil {
			return nil, fmt.Errorf("%w: slice %d: %w", ErrEncoding, i, err)
		}
		slices = append(slices, PageSlice{
			Source:     raster,
			StartRowPx: span.StartRowPx,
			HeightPx:   span.HeightPx,
			Pixels:     pixels,
		})
	}
	return slices, nil
}
