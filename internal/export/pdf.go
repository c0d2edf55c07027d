package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const pointsPerInch = 72.0

var disableConfigDir sync.Once

// PDFWriter serializes documents with pdfcpu: one imported image per page, then a
// single stamping pass for all footers.
type PDFWriter struct{}

// NewPDFWriter creates a PDF writer. pdfcpu is kept from touching the user config dir.
func NewPDFWriter() *PDFWriter {
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFWriter{}
}

func newPDFConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Write renders the pages into a PDF and checks the result before returning it.
func (w *PDFWriter) Write(geometry PageGeometry, pages []Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	widthPx := pages[0].Placement.WidthPx
	imgs := make([]io.Reader, len(pages))
	for i, p := range pages {
		if p.Placement.WidthPx != widthPx {
			return nil, fmt.Errorf("page %d width %dpx differs from %dpx", i+1, p.Placement.WidthPx, widthPx)
		}
		imgs[i] = bytes.NewReader(p.Placement.Image)
	}

	conf := newPDFConfiguration()

	imp, err := api.Import(importDescription(geometry, pages[0].Placement), types.MILLIMETRES)
	if err != nil {
		return nil, fmt.Errorf("failed to build image import: %w", err)
	}

	var placed bytes.Buffer
	if err := api.ImportImages(nil, &placed, imgs, imp, conf); err != nil {
		return nil, fmt.Errorf("failed to place images: %w", err)
	}

	stamps := make(map[int][]*model.Watermark)
	for i, p := range pages {
		for _, f := range p.Footers {
			wm, err := api.TextWatermark(f.Text, footerDescription(f), true, false, types.MILLIMETRES)
			if err != nil {
				return nil, fmt.Errorf("failed to build footer %q: %w", f.Text, err)
			}
			stamps[i+1] = append(stamps[i+1], wm)
		}
	}

	out := placed.Bytes()
	if len(stamps) > 0 {
		var stamped bytes.Buffer
		if err := api.AddWatermarksSliceMap(bytes.NewReader(out), &stamped, stamps, conf); err != nil {
			return nil, fmt.Errorf("failed to write footers: %w", err)
		}
		out = stamped.Bytes()
	}

	if err := api.Validate(bytes.NewReader(out), conf); err != nil {
		return nil, fmt.Errorf("produced PDF is invalid: %w", err)
	}
	count, err := api.PageCount(bytes.NewReader(out), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if count != len(pages) {
		return nil, fmt.Errorf("produced %d pages, expected %d", count, len(pages))
	}

	slog.Debug("PDF written", "page_count", count, "output_size_bytes", len(out))
	return out, nil
}

// importDescription anchors every image at the top-left margin. The absolute scale factor
// maps the image pixel width (at 72 dpi, one pixel per point) onto the placement width.
func importDescription(geometry PageGeometry, p Placement) string {
	widthPt := p.WidthMm / mmPerInch * pointsPerInch
	scale := widthPt / float64(p.WidthPx)
	return fmt.Sprintf("dimensions:%s %s, position:tl, offset:%s -%s, dpi:72, scalefactor:%s abs",
		mm(geometry.WidthMm), mm(geometry.HeightMm), mm(p.XMm), mm(p.YMm),
		strconv.FormatFloat(scale, 'f', 6, 64))
}

func footerDescription(f Footer) string {
	pos, dx := "bl", mm(f.InsetMm)
	if f.Anchor == FooterRight {
		pos, dx = "br", "-"+mm(f.InsetMm)
	}
	return fmt.Sprintf("fontname:Helvetica, points:%s, position:%s, offset:%s %s, scalefactor:1 abs, rotation:0, opacity:1, fillcolor:%s",
		strconv.FormatFloat(f.SizePt, 'f', -1, 64), pos, dx, mm(f.BaselineMm), f.Color)
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
