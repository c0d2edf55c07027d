package imageprocessing

import (
	"image"
	"image/color"
)

// FlattenCommand composites an image over an opaque background color so the result
// carries no transparency
type FlattenCommand struct {
	name       string
	background color.RGBA
}

// NewFlattenCommand creates a flatten command; the alpha of background is forced to opaque
func NewFlattenCommand(background color.RGBA) *FlattenCommand {
	background.A = 255
	return &FlattenCommand{
		name:       "FlattenCommand",
		background: background,
	}
}

// Name returns the command name
func (c *FlattenCommand) Name() string {
	return c.name
}

// Execute blends every pixel over the background
func (c *FlattenCommand) Execute(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	bgR, bgG, bgB := uint32(c.background.R), uint32(c.background.G), uint32(c.background.B)

	parallelFor(h, func(y int) {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// premultiplied 16-bit components over an 8-bit background
			inv := 0xffff - a
			off := out.PixOffset(x, y)
			out.Pix[off+0] = uint8((r + bgR*0x101*inv/0xffff) >> 8)
			out.Pix[off+1] = uint8((g + bgG*0x101*inv/0xffff) >> 8)
			out.Pix[off+2] = uint8((b + bgB*0x101*inv/0xffff) >> 8)
			out.Pix[off+3] = 255
		}
	})

	return out, nil
}
