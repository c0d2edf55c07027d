package report

import (
	"math"
	"strconv"

	"github.com/jo-hoe/trademate/internal/surface"
)

type chartKind int

const (
	lineChart chartKind = iota
	barChart
)

type box struct {
	x, y, w, h float64
}

const (
	chartTitleH  = 28.0
	axisLabelW   = 40.0
	axisLabelH   = 22.0
	maxTickCount = 5
	gridColor    = "#f3f4f6"
	axisColor    = "#9ca3af"
)

// drawChart renders a single-series chart of d into b. Values start at zero and the
// value axis ends on the first tick at or above the largest value.
func drawChart(s *surface.Surface, kind chartKind, d *Dataset, title string, b box) {
	s.Add(surface.Text{X: b.x + b.w/2, Y: b.y + 16, Content: title, Size: 14, Bold: true, Color: labelColor, Align: surface.AlignCenter})

	plot := box{
		x: b.x + axisLabelW,
		y: b.y + chartTitleH,
		w: b.w - axisLabelW,
		h: b.h - chartTitleH - axisLabelH,
	}
	if plot.w <= 0 || plot.h <= 0 {
		return
	}

	ticks := valueTicks(d.Max(), maxTickCount)
	top := float64(ticks[len(ticks)-1])
	yOf := func(v float64) float64 {
		return scaleValue(v, 0, top, plot.y+plot.h, plot.y)
	}

	for _, tick := range ticks {
		ty := yOf(float64(tick))
		s.Add(
			surface.Line{X1: plot.x, Y1: ty, X2: plot.x + plot.w, Y2: ty, Stroke: gridColor, StrokeWidth: 1},
			surface.Text{X: plot.x - 6, Y: ty + 4, Content: strconv.Itoa(tick), Size: 10, Color: mutedColor, Align: surface.AlignRight},
		)
	}
	s.Add(
		surface.Line{X1: plot.x, Y1: plot.y, X2: plot.x, Y2: plot.y + plot.h, Stroke: axisColor, StrokeWidth: 1},
		surface.Line{X1: plot.x, Y1: plot.y + plot.h, X2: plot.x + plot.w, Y2: plot.y + plot.h, Stroke: axisColor, StrokeWidth: 1},
	)

	n := len(d.Samples)
	if n == 0 {
		return
	}
	band := plot.w / float64(n)
	points := make([]surface.Point, n)
	for i, sample := range d.Samples {
		cx := plot.x + band*(float64(i)+0.5)
		points[i] = surface.Point{X: cx, Y: yOf(float64(sample.Value))}
		s.Add(surface.Text{X: cx, Y: plot.y + plot.h + 16, Content: sample.Label, Size: 10, Color: mutedColor, Align: surface.AlignCenter})
	}

	switch kind {
	case barChart:
		barW := band * 0.6
		for _, p := range points {
			s.Add(surface.Rect{
				X:           p.X - barW/2,
				Y:           p.Y,
				W:           barW,
				H:           plot.y + plot.h - p.Y,
				Fill:        barFillColor,
				Stroke:      seriesColor,
				StrokeWidth: 1,
			})
		}
	default:
		s.Add(surface.Polyline{Points: points, Stroke: seriesColor, StrokeWidth: 2})
		for _, p := range points {
			s.Add(surface.Circle{CX: p.X, CY: p.Y, R: 3, Fill: seriesColor})
		}
	}
}

func scaleValue(value, srcMin, srcMax, dstMin, dstMax float64) float64 {
	if srcMax == srcMin {
		return (dstMin + dstMax) / 2
	}
	return dstMin + (value-srcMin)*(dstMax-dstMin)/(srcMax-srcMin)
}

// valueTicks returns evenly spaced ticks from zero whose last tick is >= maxValue.
// The step is rounded to 1, 2 or 5 times a power of ten.
func valueTicks(maxValue, maxTicks int) []int {
	if maxValue <= 0 {
		return []int{0, 1}
	}

	roughStep := float64(maxValue) / float64(maxTicks)
	magnitude := math.Pow(10, math.Floor(math.Log10(roughStep)))
	residual := roughStep / magnitude

	var step float64
	switch {
	case residual <= 1:
		step = magnitude
	case residual <= 2:
		step = 2 * magnitude
	case residual <= 5:
		step = 5 * magnitude
	default:
		step = 10 * magnitude
	}
	istep := max(int(step), 1)

	ticks := []int{0}
	for tick := istep; ticks[len(ticks)-1] < maxValue; tick += istep {
		ticks = append(ticks, tick)
	}
	return ticks
}
