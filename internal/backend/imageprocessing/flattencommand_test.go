package imageprocessing

import (
	"image"
	"image/color"
	"testing"
)

func TestFlattenCommand_TransparentBecomesBackground(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	src.Set(1, 1, color.RGBA{255, 0, 0, 255})

	out, err := NewFlattenCommand(color.RGBA{255, 255, 255, 0}).Execute(src)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	rgba := out.(*image.RGBA)
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected transparent pixel to become opaque white, got %v", got)
	}
	if got := rgba.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("Expected opaque pixel to be kept, got %v", got)
	}
}

func TestFlattenCommand_HalfTransparentBlends(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.NRGBA{0, 0, 0, 128})

	out, err := NewFlattenCommand(color.RGBA{255, 255, 255, 255}).Execute(src)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	got := out.(*image.RGBA).RGBAAt(0, 0)
	if got.A != 255 {
		t.Fatalf("Expected opaque result, got alpha %d", got.A)
	}
	if got.R < 120 || got.R > 135 {
		t.Errorf("Expected mid gray after blending, got %v", got)
	}
}
