package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jo-hoe/trademate/internal/backend/imageprocessing"
	"github.com/jo-hoe/trademate/internal/surface"

	_ "image/gif"
	_ "image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultScale       = 2.2
	DefaultJPEGQuality = 92

	maxRemoteImageBytes = 10 << 20
)

var white = color.RGBA{255, 255, 255, 255}

// RasterImage is the single bitmap captured from a surface.
// Pixels holds the encoded JPEG; the decoded canvas is kept for slicing.
type RasterImage struct {
	WidthPx  int
	HeightPx int
	Pixels   []byte

	canvas image.Image
}

// RasterOption configures a Rasterizer.
type RasterOption func(*Rasterizer)

// WithScale sets the device pixels per CSS pixel.
func WithScale(s float64) RasterOption {
	return func(r *Rasterizer) { r.scale = s }
}

// WithJPEGQuality sets the quality used when encoding the capture and its slices.
func WithJPEGQuality(q int) RasterOption {
	return func(r *Rasterizer) { r.quality = q }
}

// WithCrossOrigin allows fetching images from absolute http(s) URLs.
func WithCrossOrigin(allowed bool) RasterOption {
	return func(r *Rasterizer) { r.allowCrossOrigin = allowed }
}

// WithHTTPClient sets the client used for cross-origin image fetches.
func WithHTTPClient(c *http.Client) RasterOption {
	return func(r *Rasterizer) { r.client = c }
}

// WithAssets sets the file system that resolves same-origin (relative) image sources.
func WithAssets(assets fs.FS) RasterOption {
	return func(r *Rasterizer) { r.assets = assets }
}

// Rasterizer captures a surface into a RasterImage.
type Rasterizer struct {
	scale            float64
	quality          int
	allowCrossOrigin bool
	client           *http.Client
	assets           fs.FS
}

// NewRasterizer creates a rasterizer with the default 2.2x scale and JPEG quality 92.
func NewRasterizer(opts ...RasterOption) *Rasterizer {
	r := &Rasterizer{
		scale:   DefaultScale,
		quality: DefaultJPEGQuality,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scale returns the configured device pixels per CSS pixel.
func (r *Rasterizer) Scale() float64 {
	return r.scale
}

// JPEGQuality returns the quality used for encoding.
func (r *Rasterizer) JPEGQuality() int {
	return r.quality
}

// Capture paints the surface onto an opaque white canvas and encodes it.
// The source surface is not modified.
func (r *Rasterizer) Capture(ctx context.Context, s *surface.Surface) (raster *RasterImage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			raster = nil
			err = fmt.Errorf("%w: renderer panicked: %v", ErrCapture, rec)
		}
	}()

	if s == nil {
		return nil, fmt.Errorf("%w: no surface", ErrCapture)
	}
	if s.Detached {
		return nil, fmt.Errorf("%w: surface is detached", ErrCapture)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("%w: invalid scale %v", ErrCapture, r.scale)
	}
	w := int(math.Floor(s.Width * r.scale))
	h := int(math.Floor(s.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty surface %vx%v", ErrCapture, s.Width, s.Height)
	}

	slog.Debug("capturing surface",
		"surface_width", s.Width,
		"surface_height", s.Height,
		"scale", r.scale,
		"raster_width", w,
		"raster_height", h)

	canvas := createTargetCanvas(w, h, white)

	if err := r.drawShapes(canvas, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	r.drawImages(ctx, canvas, s.Images())
	if err := r.drawTexts(canvas, s.Texts()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	flat, err := imageprocessing.NewCommandInvoker(imageprocessing.NewFlattenCommand(white)).Execute(canvas)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	pixels, err := encodeJPEG(flat, r.quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	slog.Debug("surface captured", "output_size_bytes", len(pixels))

	return &RasterImage{
		WidthPx:  w,
		HeightPx: h,
		Pixels:   pixels,
		canvas:   flat,
	}, nil
}

func createTargetCanvas(w, h int, bg color.RGBA) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return canvas
}

func (r *Rasterizer) drawShapes(canvas *image.RGBA, s *surface.Surface) error {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(s.SVG()))
	if err != nil {
		return fmt.Errorf("failed to parse surface shapes: %w", err)
	}
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	icon.SetTarget(0, 0, s.Width*r.scale, s.Height*r.scale)

	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return nil
}

// drawImages places every referenced image. Loading is best-effort: an image that
// may not or cannot be loaded leaves a blank region.
func (r *Rasterizer) drawImages(ctx context.Context, canvas *image.RGBA, images []surface.Image) {
	for _, ref := range images {
		box := image.Rect(
			int(math.Floor(ref.X*r.scale)),
			int(math.Floor(ref.Y*r.scale)),
			int(math.Floor((ref.X+ref.W)*r.scale)),
			int(math.Floor((ref.Y+ref.H)*r.scale)),
		).Intersect(canvas.Bounds())
		if box.Empty() {
			continue
		}

		img, err := r.loadImage(ctx, ref.Src)
		if err == nil {
			var scale *imageprocessing.ScaleCommand
			scale, err = imageprocessing.NewScaleCommand(box.Dx(), box.Dy())
			if err == nil {
				img, err = imageprocessing.NewCommandInvoker(scale).Execute(img)
			}
		}
		if err != nil {
			slog.Warn("image left blank in capture", "src", ref.Src, "error", err)
			draw.Draw(canvas, box, image.NewUniform(white), image.Point{}, draw.Src)
			continue
		}
		draw.Draw(canvas, box, img, img.Bounds().Min, draw.Over)
	}
}

// imageOrigin classifies an image source for the capability check.
type imageOrigin int

const (
	originInline imageOrigin = iota
	originSame
	originCross
)

func classifySource(src string) imageOrigin {
	if strings.HasPrefix(src, "data:") {
		return originInline
	}
	// any source naming a host is cross-origin, including protocol-relative "//host/path"
	if u, err := url.Parse(src); err != nil || u.Host != "" {
		return originCross
	}
	return originSame
}

// CanLoad reports whether the rasterizer is permitted to load the given image source.
func (r *Rasterizer) CanLoad(src string) bool {
	switch classifySource(src) {
	case originInline:
		return true
	case originSame:
		return r.assets != nil
	default:
		return r.allowCrossOrigin && r.client != nil
	}
}

func (r *Rasterizer) loadImage(ctx context.Context, src string) (image.Image, error) {
	if !r.CanLoad(src) {
		return nil, fmt.Errorf("loading %q is not permitted", src)
	}

	var data []byte
	var err error
	switch classifySource(src) {
	case originInline:
		data, err = decodeDataURI(src)
	case originSame:
		data, err = fs.ReadFile(r.assets, strings.TrimPrefix(src, "/"))
	default:
		data, err = r.fetch(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (r *Rasterizer) fetch(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxRemoteImageBytes))
}

func decodeDataURI(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := src[len("data:"):comma], src[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("only base64 data URIs are supported")
	}
	return base64.StdEncoding.DecodeString(payload)
}

var parsedFonts = sync.OnceValues(func() ([2]*opentype.Font, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return [2]*opentype.Font{}, err
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return [2]*opentype.Font{}, err
	}
	return [2]*opentype.Font{regular, bold}, nil
})

type faceKey struct {
	size float64
	bold bool
}

func (r *Rasterizer) drawTexts(canvas *image.RGBA, texts []surface.Text) error {
	if len(texts) == 0 {
		return nil
	}
	fonts, err := parsedFonts()
	if err != nil {
		return fmt.Errorf("failed to load fonts: %w", err)
	}

	faces := make(map[faceKey]font.Face)
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()

	for _, t := range texts {
		if t.Content == "" || t.Size <= 0 {
			continue
		}
		key := faceKey{size: t.Size, bold: t.Bold}
		face, ok := faces[key]
		if !ok {
			f := fonts[0]
			if t.Bold {
				f = fonts[1]
			}
			face, err = opentype.NewFace(f, &opentype.FaceOptions{
				Size:    t.Size * r.scale,
				DPI:     72,
				Hinting: font.HintingNone,
			})
			if err != nil {
				return fmt.Errorf("failed to create font face: %w", err)
			}
			faces[key] = face
		}

		col := t.Color
		if col.A == 0 {
			col = color.RGBA{17, 17, 17, 255}
		}
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(col),
			Face: face,
		}
		x := t.X * r.scale
		switch t.Align {
		case surface.AlignCenter:
			x -= float64(d.MeasureString(t.Content)) / 64 / 2
		case surface.AlignRight:
			x -= float64(d.MeasureString(t.Content)) / 64
		}
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(t.Y * r.scale * 64),
		}
		d.DrawString(t.Content)
	}
	return nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
