package imageprocessing

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
)

// CropRowsCommand cuts a full-width horizontal band out of an image
type CropRowsCommand struct {
	name   string
	top    int
	height int
}

// NewCropRowsCommand creates a command that keeps rows [top, top+height)
func NewCropRowsCommand(top, height int) (*CropRowsCommand, error) {
	if top < 0 {
		return nil, fmt.Errorf("top must not be negative, got %d", top)
	}
	if height <= 0 {
		return nil, fmt.Errorf("height must be positive, got %d", height)
	}
	return &CropRowsCommand{
		name:   "CropRowsCommand",
		top:    top,
		height: height,
	}, nil
}

// Name returns the command name
func (c *CropRowsCommand) Name() string {
	return c.name
}

// Execute copies the configured band into a new image anchored at the origin.
// The band must lie entirely inside the source.
func (c *CropRowsCommand) Execute(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	if c.top+c.height > bounds.Dy() {
		return nil, fmt.Errorf("rows %d..%d exceed image height %d", c.top, c.top+c.height, bounds.Dy())
	}

	src := image.Rect(bounds.Min.X, bounds.Min.Y+c.top, bounds.Max.X, bounds.Min.Y+c.top+c.height)
	band := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), c.height))
	draw.Draw(band, band.Bounds(), img, src.Min, draw.Src)

	slog.Debug("CropRowsCommand: band cropped",
		"top", c.top,
		"height", c.height,
		"width", bounds.Dx())

	return band, nil
}

// GetTop returns the first row of the band
func (c *CropRowsCommand) GetTop() int {
	return c.top
}

// GetHeight returns the band height in rows
func (c *CropRowsCommand) GetHeight() int {
	return c.height
}
