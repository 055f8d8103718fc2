package placement

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

var guideColor = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}

// guideDash is the on/off length of the dashed print-area outline
const guideDash = 5

// render draws the background layer, the print-area guide, and the design
// clipped to the printable area. The selection overlay is not part of the
// snapshot.
func (s *Surface) render() *image.NRGBA {
	w := int(math.Round(s.space.Width))
	h := int(math.Round(s.space.Height))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)

	if s.background != nil {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), s.background, s.background.Bounds(), xdraw.Over, nil)
	}

	clip := PrintableArea(s.space).Pixels()
	drawDashedRect(dst, clip, guideColor)

	size := s.rect.Pixels()
	lw, lh := max(size.Dx(), 1), max(size.Dy(), 1)
	layer := imaging.Resize(s.design, lw, lh, imaging.Lanczos)

	var ox, oy int
	if s.rotation != 0 {
		layer = imaging.Rotate(layer, -s.rotation, color.Transparent)
		cx, cy := s.toCanvas(s.rect.Width/2, s.rect.Height/2)
		ox = int(math.Round(cx - float64(layer.Bounds().Dx())/2))
		oy = int(math.Round(cy - float64(layer.Bounds().Dy())/2))
	} else {
		ox, oy = size.Min.X, size.Min.Y
	}

	target := image.Rect(ox, oy, ox+layer.Bounds().Dx(), oy+layer.Bounds().Dy()).
		Intersect(clip).
		Intersect(dst.Bounds())
	if !target.Empty() {
		xdraw.Draw(dst, target, layer, image.Pt(target.Min.X-ox, target.Min.Y-oy), xdraw.Over)
	}
	return dst
}

func drawDashedRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	on := func(i int) bool { return (i/guideDash)%2 == 0 }
	for x := r.Min.X; x < r.Max.X; x++ {
		if on(x - r.Min.X) {
			dst.SetNRGBA(x, r.Min.Y, c)
			dst.SetNRGBA(x, r.Max.Y-1, c)
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if on(y - r.Min.Y) {
			dst.SetNRGBA(r.Min.X, y, c)
			dst.SetNRGBA(r.Max.X-1, y, c)
		}
	}
}
