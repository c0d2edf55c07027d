package export

import (
	"fmt"
	"log/slog"
	"slices"
)

const (
	// FooterBaselineMm is the distance of footer text from the bottom page edge.
	FooterBaselineMm = 8.0
	FooterSizePt     = 9.0
	FooterColor      = "#666666"
)

// FooterAnchor selects the page side a footer is aligned to.
type FooterAnchor int

const (
	FooterLeft FooterAnchor = iota
	FooterRight
)

// Placement positions one encoded image on a page. Coordinates are millimetres from
// the top-left page corner.
type Placement struct {
	Image    []byte
	WidthPx  int
	HeightPx int
	XMm      float64
	YMm      float64
	WidthMm  float64
	HeightMm float64
}

// Footer is a line of text placed below the content area.
// InsetMm is the distance from the anchored side edge, BaselineMm from the bottom edge.
type Footer struct {
	Text       string
	Anchor     FooterAnchor
	InsetMm    float64
	BaselineMm float64
	SizePt     float64
	Color      string
}

// Page holds at most one image placement plus its footers.
type Page struct {
	Placement Placement
	Footers   []Footer
}

// Layout is the outcome of the placement phase. Its page list is fixed once built.
type Layout struct {
	geometry PageGeometry
	pages    []Page
}

// Place lays out one slice per page at the margin offset, stretched to the usable width.
func Place(geometry PageGeometry, pageSlices []PageSlice) (*Layout, error) {
	if !geometry.Valid() {
		return nil, fmt.Errorf("page geometry leaves no usable area")
	}
	if len(pageSlices) == 0 {
		return nil, fmt.Errorf("%w: nothing to place", ErrEncoding)
	}

	pages := make([]Page, 0, len(pageSlices))
	for i, s := range pageSlices {
		if s.Source == nil || len(s.Pixels) == 0 || s.HeightPx <= 0 {
			return nil, fmt.Errorf("%w: slice %d is empty", ErrEncoding, i)
		}
		pages = append(pages, Page{
			Placement: Placement{
				Image:    s.Pixels,
				WidthPx:  s.Source.WidthPx,
				HeightPx: s.HeightPx,
				XMm:      geometry.MarginMm,
				YMm:      geometry.MarginMm,
				WidthMm:  geometry.UsableWidth(),
				HeightMm: geometry.DisplayHeight(s.Source.WidthPx, s.HeightPx),
			},
		})
	}

	slog.Debug("content placed", "page_count", len(pages))
	return &Layout{geometry: geometry, pages: pages}, nil
}

// PageCount returns the number of pages in the layout.
func (l *Layout) PageCount() int {
	return len(l.pages)
}

// Pages returns a copy of the laid-out pages.
func (l *Layout) Pages() []Page {
	return clonePages(l.pages)
}

// Document is an annotated layout waiting to be serialized.
type Document struct {
	geometry  PageGeometry
	pages     []Page
	finalized bool
}

// Annotate runs the footer pass over a completed layout. The layout is left untouched;
// the returned document carries the generated-timestamp footer on its last page and a
// page-number footer on every page.
func Annotate(l *Layout, generatedAt string) *Document {
	pages := clonePages(l.pages)
	total := len(pages)
	margin := l.geometry.MarginMm

	if total > 0 {
		last := &pages[total-1]
		last.Footers = append(last.Footers, Footer{
			Text:       "Generated: " + generatedAt,
			Anchor:     FooterLeft,
			InsetMm:    margin,
			BaselineMm: FooterBaselineMm,
			SizePt:     FooterSizePt,
			Color:      FooterColor,
		})
	}

	for i := range pages {
		pages[i].Footers = append(pages[i].Footers, Footer{
			Text:       PageLabel(i+1, total),
			Anchor:     FooterRight,
			InsetMm:    margin,
			BaselineMm: FooterBaselineMm,
			SizePt:     FooterSizePt,
			Color:      FooterColor,
		})
	}

	return &Document{geometry: l.geometry, pages: pages}
}

// PageLabel formats the page-number footer text.
func PageLabel(index, total int) string {
	return fmt.Sprintf("Page %d of %d", index, total)
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Pages returns a copy of the annotated pages.
func (d *Document) Pages() []Page {
	return clonePages(d.pages)
}

// Geometry returns the page geometry of the document.
func (d *Document) Geometry() PageGeometry {
	return d.geometry
}

// DocumentWriter serializes annotated pages into a document format.
type DocumentWriter interface {
	Write(geometry PageGeometry, pages []Page) ([]byte, error)
}

// Finalize serializes the document. A document can be finalized only once.
func (d *Document) Finalize(w DocumentWriter) ([]byte, error) {
	if d.finalized {
		return nil, ErrFinalized
	}
	d.finalized = true

	out, err := w.Write(d.geometry, d.Pages())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return out, nil
}

func clonePages(pages []Page) []Page {
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = Page{Placement: p.Placement, Footers: slices.Clone(p.Footers)}
	}
	return out
}
