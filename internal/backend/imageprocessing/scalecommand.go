package imageprocessing

import (
	"fmt"
	"image"
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

// ScaleCommand resamples an image to exact target dimensions
type ScaleCommand struct {
	name   string
	width  int
	height int
}

// NewScaleCommand creates a scale command with the given target size
func NewScaleCommand(width, height int) (*ScaleCommand, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}
	if height <= 0 {
		return nil, fmt.Errorf("height must be positive, got %d", height)
	}
	return &ScaleCommand{
		name:   "ScaleCommand",
		width:  width,
		height: height,
	}, nil
}

// Name returns the command name
func (c *ScaleCommand) Name() string {
	return c.name
}

// Execute scales the image with bilinear interpolation
func (c *ScaleCommand) Execute(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	if bounds.Dx() == c.width && bounds.Dy() == c.height {
		return img, nil
	}

	slog.Debug("ScaleCommand: scaling image",
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"target_width", c.width,
		"target_height", c.height)

	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst, nil
}
