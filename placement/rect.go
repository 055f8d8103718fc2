package placement

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidRect is returned for rectangles without a positive width and height
var ErrInvalidRect = errors.New("placement rectangle must have positive width and height")

const (
	// InitialDesignFraction sizes a freshly loaded design on the canvas
	InitialDesignFraction = 0.4
	// DefaultFraction sizes the fallback rectangle when no placement was confirmed
	DefaultFraction = 2.0 / 3.0
)

// Rect is a top-left-origin rectangle in some unspecified unit
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the rectangle has a positive area
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Pixels rounds each component to the nearest device pixel
func (r Rect) Pixels() image.Rectangle {
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	w := int(math.Round(r.Width))
	h := int(math.Round(r.Height))
	return image.Rect(x, y, x+w, y+h)
}

// Contains reports whether the point lies inside the rectangle
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Placement is a rectangle tagged with the space it is expressed in
type Placement struct {
	Rect
	Space Space
}

// At tags r with space
func At(space Space, r Rect) Placement {
	return Placement{Rect: r, Space: space}
}

func (p Placement) String() string {
	return fmt.Sprintf("%s{x=%g y=%g w=%g h=%g}", p.Space.Name, p.X, p.Y, p.Width, p.Height)
}

// TransformRect scales r from one space to another. Position and size use the
// same per-axis factor, so non-uniform spaces distort the aspect ratio.
func TransformRect(r Rect, from, to Space) (Rect, error) {
	if err := from.Validate(); err != nil {
		return Rect{}, err
	}
	if err := to.Validate(); err != nil {
		return Rect{}, err
	}
	if !r.Valid() {
		return Rect{}, fmt.Errorf("%w: got %gx%g", ErrInvalidRect, r.Width, r.Height)
	}

	sx := to.Width / from.Width
	sy := to.Height / from.Height
	return Rect{
		X:      r.X * sx,
		Y:      r.Y * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}, nil
}

// Transform re-expresses p in the target space
func Transform(p Placement, to Space) (Placement, error) {
	r, err := TransformRect(p.Rect, p.Space, to)
	if err != nil {
		return Placement{}, fmt.Errorf("failed to transform %s to %s: %w", p.Space.Name, to.Name, err)
	}
	return Placement{Rect: r, Space: to}, nil
}

// DefaultPlacement centers a rectangle whose width is fraction of the space
// width. aspect is width/height of the design; values <= 0 mean square.
func DefaultPlacement(space Space, fraction, aspect float64) (Placement, error) {
	if err := space.Validate(); err != nil {
		return Placement{}, err
	}
	if !(fraction > 0) {
		return Placement{}, fmt.Errorf("%w: fraction must be positive, got %g", ErrInvalidRect, fraction)
	}
	if !(aspect > 0) {
		aspect = 1
	}

	width := space.Width * fraction
	height := width / aspect
	return Placement{
		Rect: Rect{
			X:      (space.Width - width) / 2,
			Y:      (space.Height - height) / 2,
			Width:  width,
			Height: height,
		},
		Space: space,
	}, nil
}

// PrintableArea is the clip region of the shirt where artwork is visible:
// 30% margins left and right, 25% top and bottom.
func PrintableArea(space Space) Placement {
	mx := space.Width * 0.3
	my := space.Height * 0.25
	return Placement{
		Rect:  Rect{X: mx, Y: my, Width: space.Width - 2*mx, Height: space.Height - 2*my},
		Space: space,
	}
}
