package report

import (
	"image/color"
	"strconv"

	"github.com/jo-hoe/trademate/internal/surface"
)

const (
	DefaultWidth       = 900.0
	DefaultPreparedFor = "Company / Team Name"

	padding       = 18.0
	gap           = 16.0
	panelPadding  = 12.0
	metricsWidth  = 320.0
	headerHeight  = 90.0
	panelHeight   = 130.0
	chartHeight   = 300.0
	tableRowH     = 32.0
	logoSize      = 48.0
	minPanelWidth = 200.0

	borderColor    = "#e5e7eb"
	rowBorderColor = "#f3f4f6"
	seriesColor    = "#3b82f6"
	barFillColor   = "#c4d9fc"
)

var (
	textColor   = surface.HexColor("#111111")
	mutedColor  = surface.HexColor("#6b7280")
	labelColor  = surface.HexColor("#374151")
	upColor     = surface.HexColor("#16a34a")
	downColor   = surface.HexColor("#dc2626")
	surfaceBase = surface.HexColor("#ffffff")
)

// Trend is the direction of a key metric.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// Metric is one line of the key metrics panel.
type Metric struct {
	Label string
	Value string
	Trend Trend
}

// DefaultMetrics are shown when no metrics are configured.
var DefaultMetrics = []Metric{
	{Label: "Revenue Growth", Value: "+12.5%", Trend: TrendUp},
	{Label: "Orders Change", Value: "-2.3%", Trend: TrendDown},
	{Label: "Customer Satisfaction", Value: "89%"},
}

// Options controls the report surface.
type Options struct {
	Width       float64
	GeneratedAt string
	PreparedFor string
	LogoURL     string
	Metrics     []Metric
}

func (o Options) withDefaults() Options {
	if o.Width < 2*padding+gap+metricsWidth+minPanelWidth {
		o.Width = DefaultWidth
	}
	if o.PreparedFor == "" {
		o.PreparedFor = DefaultPreparedFor
	}
	if o.Metrics == nil {
		o.Metrics = DefaultMetrics
	}
	return o
}

// Layout arranges the report into a surface: header, summary and key metrics, a line
// and a bar chart, then the detailed data table with a total row.
func Layout(d *Dataset, opts Options) *surface.Surface {
	opts = opts.withDefaults()
	s := surface.New(opts.Width, 0)
	s.Background = surfaceBase

	y := layoutHeader(s, d, opts)
	y = layoutPanels(s, d, opts, y+padding)
	y = layoutCharts(s, d, opts.Width, y+padding)
	y = layoutTable(s, d, opts.Width, y+padding)

	s.Height = y + padding
	return s
}

func layoutHeader(s *surface.Surface, d *Dataset, opts Options) float64 {
	right := opts.Width - padding

	s.Add(
		surface.Text{X: padding, Y: padding + 22, Content: "TradeMate — Progress Report", Size: 22, Bold: true, Color: textColor},
		surface.Text{X: padding, Y: padding + 50, Content: opts.GeneratedAt, Size: 14, Color: mutedColor},
		surface.Text{X: padding + 220, Y: padding + 50, Content: "Type: " + d.Granularity.Title(), Size: 14, Color: mutedColor},
		surface.Text{X: right, Y: padding + 22, Content: "Prepared for", Size: 12, Color: labelColor, Align: surface.AlignRight},
		surface.Text{X: right, Y: padding + 44, Content: opts.PreparedFor, Size: 16, Bold: true, Color: textColor, Align: surface.AlignRight},
	)
	if opts.LogoURL != "" {
		s.Add(surface.Image{
			X:   right - 180 - logoSize,
			Y:   (headerHeight - logoSize) / 2,
			W:   logoSize,
			H:   logoSize,
			Src: opts.LogoURL,
		})
	}
	s.Add(surface.Line{X1: 0, Y1: headerHeight, X2: opts.Width, Y2: headerHeight, Stroke: borderColor, StrokeWidth: 1})
	return headerHeight
}

func layoutPanels(s *surface.Surface, d *Dataset, opts Options, top float64) float64 {
	summaryW := opts.Width - 2*padding - gap - metricsWidth
	metricsX := padding + summaryW + gap

	height := panelHeight
	if h := panelPadding*2 + 30 + float64(len(opts.Metrics))*26; h > height {
		height = h
	}

	panel(s, padding, top, summaryW, height, "Summary")
	summary := []struct {
		label string
		value int
	}{
		{"Total:", d.Total()},
		{"Average:", d.Average()},
		{"Entries:", d.Entries()},
	}
	for i, row := range summary {
		baseline := top + panelPadding + 52 + float64(i)*26
		s.Add(
			surface.Text{X: padding + panelPadding, Y: baseline, Content: row.label, Size: 14, Color: labelColor},
			surface.Text{X: padding + panelPadding + 80, Y: baseline, Content: strconv.Itoa(row.value), Size: 14, Bold: true, Color: textColor},
		)
	}

	panel(s, metricsX, top, metricsWidth, height, "Key Metrics")
	for i, m := range opts.Metrics {
		baseline := top + panelPadding + 52 + float64(i)*26
		s.Add(
			surface.Circle{CX: metricsX + panelPadding + 4, CY: baseline - 5, R: 2.5, Fill: "#374151"},
			surface.Text{X: metricsX + panelPadding + 14, Y: baseline, Content: m.Label + ":", Size: 14, Color: labelColor},
			surface.Text{X: metricsX + metricsWidth - panelPadding, Y: baseline, Content: m.Value, Size: 14, Bold: true, Color: trendColor(m.Trend), Align: surface.AlignRight},
		)
	}
	return top + height
}

func panel(s *surface.Surface, x, y, w, h float64, title string) {
	s.Add(
		surface.Rect{X: x, Y: y, W: w, H: h, Radius: 8, Stroke: borderColor, StrokeWidth: 1},
		surface.Text{X: x + panelPadding, Y: y + panelPadding + 18, Content: title, Size: 18, Bold: true, Color: textColor},
	)
}

func trendColor(t Trend) color.RGBA {
	switch t {
	case TrendUp:
		return upColor
	case TrendDown:
		return downColor
	}
	return textColor
}

func layoutCharts(s *surface.Surface, d *Dataset, width, top float64) float64 {
	w := (width - 2*padding - gap) / 2
	title := d.Granularity.Title() + " Progress"

	for i, kind := range []chartKind{lineChart, barChart} {
		x := padding + float64(i)*(w+gap)
		s.Add(surface.Rect{X: x, Y: top, W: w, H: chartHeight, Radius: 8, Stroke: borderColor, StrokeWidth: 1})
		drawChart(s, kind, d, title, box{
			x: x + panelPadding,
			y: top + panelPadding,
			w: w - 2*panelPadding,
			h: chartHeight - 2*panelPadding,
		})
	}
	return top + chartHeight
}

func layoutTable(s *surface.Surface, d *Dataset, width, top float64) float64 {
	left, right := padding, width-padding
	valueX := padding + (right-left)/2

	s.Add(surface.Text{X: left, Y: top + 18, Content: "Detailed Data", Size: 18, Bold: true, Color: textColor})
	y := top + 30

	row := func(label, value string, bold bool, border string) {
		s.Add(
			surface.Text{X: left + 8, Y: y + 20, Content: label, Size: 12, Bold: bold, Color: textColor},
			surface.Text{X: valueX + 8, Y: y + 20, Content: value, Size: 12, Bold: bold, Color: textColor},
		)
		y += tableRowH
		if border != "" {
			s.Add(surface.Line{X1: left, Y1: y, X2: right, Y2: y, Stroke: border, StrokeWidth: 1})
		}
	}

	row("Label", "Value", true, borderColor)
	for _, sample := range d.Samples {
		row(sample.Label, strconv.Itoa(sample.Value), false, rowBorderColor)
	}
	row("Total", strconv.Itoa(d.Total()), true, "")
	return y
}
