package service

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"tee-wizard/models"
)

// Compositor places a design onto the base shirt with a multiply blend
type Compositor struct {
	logger *zap.Logger
}

// NewCompositor creates a new Compositor
func NewCompositor(logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{logger: logger}
}

// Composite resizes design to fit inside box (aspect preserved) and multiplies
// it onto a copy of base with its top-left corner at box.Min. box is in base
// pixel space relative to the base's top-left corner; parts falling outside
// the base are cropped. The result always has the base's dimensions.
//
// Only the part of the fitted design that lands on the base is resampled, so
// work is bounded by the base size however large box is.
func (c *Compositor) Composite(base, design image.Image, box image.Rectangle) (*image.NRGBA, error) {
	if base == nil || design == nil {
		return nil, fmt.Errorf("base and design images are required")
	}
	if box.Dx() <= 0 || box.Dy() <= 0 {
		return nil, fmt.Errorf("%w: target box must have positive size, got %dx%d",
			models.ErrInvalidInput, box.Dx(), box.Dy())
	}
	if design.Bounds().Empty() {
		return nil, fmt.Errorf("design image is empty")
	}

	out := imaging.Clone(base)
	w, h := fitSize(design.Bounds(), box.Dx(), box.Dy())
	placed := image.Rect(box.Min.X, box.Min.Y, box.Min.X+w, box.Min.Y+h)
	visible := placed.Intersect(out.Bounds())

	c.logger.Debug("Compositing design",
		zap.Stringer("base", base.Bounds()),
		zap.Stringer("design", design.Bounds()),
		zap.Stringer("box", box),
		zap.Stringer("placed", placed),
		zap.Stringer("visible", visible),
	)

	if visible.Empty() {
		return out, nil
	}
	if visible == placed {
		multiplyOnto(out, imaging.Resize(design, w, h, imaging.Lanczos), placed.Min)
		return out, nil
	}

	src := sourceRegion(design.Bounds(), placed, visible)
	fitted := imaging.Resize(imaging.Crop(design, src), visible.Dx(), visible.Dy(), imaging.Lanczos)
	multiplyOnto(out, fitted, visible.Min)
	return out, nil
}

// FitInside scales img to the largest size that fits within maxW x maxH while
// keeping its aspect ratio. Smaller images are enlarged.
func FitInside(img image.Image, maxW, maxH int) *image.NRGBA {
	w, h := fitSize(img.Bounds(), maxW, maxH)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func fitSize(b image.Rectangle, maxW, maxH int) (int, int) {
	scale := math.Min(float64(maxW)/float64(b.Dx()), float64(maxH)/float64(b.Dy()))
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	return min(max(w, 1), maxW), min(max(h, 1), maxH)
}

// sourceRegion maps the visible part of placed back into design pixels,
// widened to whole pixels and at least one pixel in each direction.
func sourceRegion(design, placed, visible image.Rectangle) image.Rectangle {
	sx := float64(design.Dx()) / float64(placed.Dx())
	sy := float64(design.Dy()) / float64(placed.Dy())
	x0 := design.Min.X + int(math.Floor(float64(visible.Min.X-placed.Min.X)*sx))
	y0 := design.Min.Y + int(math.Floor(float64(visible.Min.Y-placed.Min.Y)*sy))
	x1 := design.Min.X + int(math.Ceil(float64(visible.Max.X-placed.Min.X)*sx))
	y1 := design.Min.Y + int(math.Ceil(float64(visible.Max.Y-placed.Min.Y)*sy))
	x1 = max(x1, x0+1)
	y1 = max(y1, y0+1)
	return image.Rect(x0, y0, x1, y1).Intersect(design)
}

// multiplyOnto blends src over dst at offset using the separable multiply mode:
// co = cs*as*(1-ab) + cb*ab*(1-as) + as*ab*cs*cb, ao = as + ab*(1-as).
// Both images are non-premultiplied NRGBA.
func multiplyOnto(dst, src *image.NRGBA, offset image.Point) {
	area := src.Bounds().Add(offset).Intersect(dst.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			si := src.PixOffset(x-offset.X, y-offset.Y)
			di := dst.PixOffset(x, y)
			s := src.Pix[si : si+4 : si+4]
			d := dst.Pix[di : di+4 : di+4]

			as := float64(s[3]) / 255
			if as == 0 {
				continue
			}
			ab := float64(d[3]) / 255
			ao := as + ab*(1-as)

			for ch := 0; ch < 3; ch++ {
				cs := float64(s[ch]) / 255
				cb := float64(d[ch]) / 255
				co := cs*as*(1-ab) + cb*ab*(1-as) + as*ab*cs*cb
				d[ch] = clampByte(co / ao * 255)
			}
			d[3] = clampByte(ao * 255)
		}
	}
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// DecodeImage decodes PNG, JPEG, GIF, BMP or TIFF bytes
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img losslessly
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
