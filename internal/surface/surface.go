// Package surface describes a laid-out visual region in CSS pixels.
//
// A Surface is a flat, ordered list of nodes: vector shapes, text runs and image
// references. Shapes are serialized to SVG for rasterization, while text and images
// are drawn separately because SVG renderers used for capture do not handle them.
package surface

import (
	"fmt"
	"image/color"
	"strings"
)

// Align controls the horizontal anchoring of a text run relative to its X coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Node is any element that can be placed on a Surface.
type Node interface {
	node()
}

// Rect is a filled and/or stroked rectangle with optional rounded corners.
type Rect struct {
	X, Y, W, H  float64
	Radius      float64
	Fill        string // CSS hex color or "" for none
	Stroke      string
	StrokeWidth float64
}

// Line is a straight stroke between two points.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
}

// Point is a coordinate in CSS pixels.
type Point struct {
	X, Y float64
}

// Polyline is an open stroked path through Points.
type Polyline struct {
	Points      []Point
	Stroke      string
	StrokeWidth float64
}

// Circle is a filled disc, used for chart markers.
type Circle struct {
	CX, CY, R float64
	Fill      string
}

// Text is a single line of text. Y is the baseline.
type Text struct {
	X, Y    float64
	Content string
	Size    float64
	Bold    bool
	Color   color.RGBA
	Align   Align
}

// Image references external pixel content placed into a box.
// Src is either a data: URI, a path relative to the surface origin, or an absolute URL.
type Image struct {
	X, Y, W, H float64
	Src        string
}

func (Rect) node()     {}
func (Line) node()     {}
func (Polyline) node() {}
func (Circle) node()   {}
func (Text) node()     {}
func (Image) node()    {}

// Surface is a laid-out region ready for capture.
type Surface struct {
	Width      float64
	Height     float64
	Background color.RGBA
	Nodes      []Node
	// Detached marks a surface that is no longer attached to a live document.
	Detached bool
}

// New creates an empty surface of the given size.
func New(width, height float64) *Surface {
	return &Surface{Width: width, Height: height}
}

// Add appends nodes in paint order.
func (s *Surface) Add(nodes ...Node) {
	s.Nodes = append(s.Nodes, nodes...)
}

// Texts returns the text runs in paint order.
func (s *Surface) Texts() []Text {
	var out []Text
	for _, n := range s.Nodes {
		if t, ok := n.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// Images returns the image references in paint order.
func (s *Surface) Images() []Image {
	var out []Image
	for _, n := range s.Nodes {
		if img, ok := n.(Image); ok {
			out = append(out, img)
		}
	}
	return out
}

// SVG serializes the vector shapes of the surface. Text and image nodes are skipped.
// The background is intentionally not emitted; capture decides what lies underneath.
func (s *Surface) SVG() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(s.Width), num(s.Height), num(s.Width), num(s.Height))
	sb.WriteString("\n")

	for _, n := range s.Nodes {
		switch v := n.(type) {
		case Rect:
			fmt.Fprintf(&sb, `<rect x="%s" y="%s" width="%s" height="%s"`, num(v.X), num(v.Y), num(v.W), num(v.H))
			if v.Radius > 0 {
				fmt.Fprintf(&sb, ` rx="%s" ry="%s"`, num(v.Radius), num(v.Radius))
			}
			writePaint(&sb, v.Fill, v.Stroke, v.StrokeWidth)
			sb.WriteString("/>\n")
		case Line:
			fmt.Fprintf(&sb, `<line x1="%s" y1="%s" x2="%s" y2="%s"`, num(v.X1), num(v.Y1), num(v.X2), num(v.Y2))
			writePaint(&sb, "", v.Stroke, v.StrokeWidth)
			sb.WriteString("/>\n")
		case Polyline:
			if len(v.Points) < 2 {
				continue
			}
			pts := make([]string, len(v.Points))
			for i, p := range v.Points {
				pts[i] = num(p.X) + "," + num(p.Y)
			}
			fmt.Fprintf(&sb, `<polyline points="%s"`, strings.Join(pts, " "))
			writePaint(&sb, "", v.Stroke, v.StrokeWidth)
			sb.WriteString("/>\n")
		case Circle:
			fmt.Fprintf(&sb, `<circle cx="%s" cy="%s" r="%s"`, num(v.CX), num(v.CY), num(v.R))
			writePaint(&sb, v.Fill, "", 0)
			sb.WriteString("/>\n")
		}
	}

	sb.WriteString("</svg>\n")
	return []byte(sb.String())
}

func writePaint(sb *strings.Builder, fill, stroke string, strokeWidth float64) {
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(sb, ` fill="%s"`, fill)
	if stroke != "" && strokeWidth > 0 {
		fmt.Fprintf(sb, ` stroke="%s" stroke-width="%s"`, stroke, num(strokeWidth))
	}
}

func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// HexColor parses "#rrggbb" or "#rgb" into an opaque color. Invalid input yields black.
func HexColor(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	var r, g, b uint8
	if len(hex) != 6 {
		return color.RGBA{A: 255}
	}
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
