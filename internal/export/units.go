package export

import "math"

const (
	// ReferenceDPI is the pixel density assumed when converting raster pixels to page units.
	ReferenceDPI = 96.0
	mmPerInch    = 25.4
)

// PxToMm converts a pixel length to millimetres at ReferenceDPI.
func PxToMm(px float64) float64 {
	return px * mmPerInch / ReferenceDPI
}

// MmToPx converts a millimetre length to pixels at ReferenceDPI.
func MmToPx(mm float64) float64 {
	return mm * ReferenceDPI / mmPerInch
}

// PageGeometry describes a physical page and its uniform margin, all in millimetres.
type PageGeometry struct {
	WidthMm  float64
	HeightMm float64
	MarginMm float64
}

// A4Portrait is the page used for progress reports.
var A4Portrait = PageGeometry{WidthMm: 210, HeightMm: 297, MarginMm: 12}

// UsableWidth returns the page width inside both margins.
func (g PageGeometry) UsableWidth() float64 {
	return g.WidthMm - 2*g.MarginMm
}

// UsableHeight returns the page height inside both margins.
func (g PageGeometry) UsableHeight() float64 {
	return g.HeightMm - 2*g.MarginMm
}

// Valid reports whether the margins leave a positive usable area.
func (g PageGeometry) Valid() bool {
	return g.MarginMm >= 0 && g.UsableWidth() > 0 && g.UsableHeight() > 0
}

// DisplayScale is the ratio applied to an image whose display width is forced to the
// usable page width. Multiplying a pixel length by it yields millimetres on the page.
func (g PageGeometry) DisplayScale(imageWidthPx int) float64 {
	return g.UsableWidth() / float64(imageWidthPx)
}

// DisplayHeight returns the on-page height in millimetres of an image row span,
// derived from the image's aspect ratio.
func (g PageGeometry) DisplayHeight(imageWidthPx, rowsPx int) float64 {
	return float64(rowsPx) * g.DisplayScale(imageWidthPx)
}

// SliceHeight returns how many source rows fit into one page's usable height.
// The value is floored so a slice never overshoots the page, and is at least one row.
func (g PageGeometry) SliceHeight(imageWidthPx int) int {
	rows := int(math.Floor(g.UsableHeight() / g.DisplayScale(imageWidthPx)))
	if rows < 1 {
		return 1
	}
	return rows
}
