package placement

import (
	"errors"
	"image"
	"math"
)

var (
	// ErrNoDesign is returned when a surface is built without a design image
	ErrNoDesign = errors.New("design image is required")
	// ErrNotSelected is returned for manipulations attempted while the design is not selected
	ErrNotSelected = errors.New("design layer is not selected")
)

// MinDesignSize keeps the design rectangle strictly positive while resizing
const MinDesignSize = 1.0

// rotateHandleOffset is the distance of the rotate handle above the top edge
const rotateHandleOffset = 50.0

// Anchor names a resize handle
type Anchor int

const (
	TopLeft Anchor = iota
	TopRight
	BottomLeft
	BottomRight
)

// Handle is one transform handle of the selection overlay, in canvas space
type Handle struct {
	Kind   string  `json:"kind"`
	Anchor Anchor  `json:"anchor"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Confirmation is what the surface emits to its caller
type Confirmation struct {
	Placement Placement
	Rotation  float64
	Snapshot  *image.NRGBA
}

// Surface is the interactive placement canvas: a fixed background layer, a
// movable design layer clipped to the printable area, and a selection
// overlay. The stored rectangle is never clamped to the printable area.
type Surface struct {
	space        Space
	background   image.Image
	design       image.Image
	rect         Rect
	rotation     float64 // degrees, clockwise, pivot at the top-left corner
	selected     bool
	lockedAspect bool
	confirmed    *Confirmation
}

// SurfaceOption configures a Surface
type SurfaceOption func(*Surface)

// WithSpace overrides the default 600x600 canvas space
func WithSpace(space Space) SurfaceOption {
	return func(s *Surface) {
		s.space = space
	}
}

// WithLockedAspect makes corner resizes preserve the design aspect ratio
func WithLockedAspect(locked bool) SurfaceOption {
	return func(s *Surface) {
		s.lockedAspect = locked
	}
}

// NewSurface loads the design at 40% of the canvas width, keeping the design's
// aspect ratio, centered in the canvas. background may be nil.
func NewSurface(background, design image.Image, opts ...SurfaceOption) (*Surface, error) {
	if design == nil || design.Bounds().Empty() {
		return nil, ErrNoDesign
	}

	s := &Surface{
		space:      CanvasSpace,
		background: background,
		design:     design,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.space.Validate(); err != nil {
		return nil, err
	}

	b := design.Bounds()
	initial, err := DefaultPlacement(s.space, InitialDesignFraction, float64(b.Dx())/float64(b.Dy()))
	if err != nil {
		return nil, err
	}
	s.rect = initial.Rect
	return s, nil
}

// Space returns the canvas space
func (s *Surface) Space() Space { return s.space }

// Selected reports whether the transform handles are attached
func (s *Surface) Selected() bool { return s.selected }

// Rotation returns the current design rotation in degrees
func (s *Surface) Rotation() float64 { return s.rotation }

// Placement returns the current design rectangle in canvas space
func (s *Surface) Placement() Placement {
	return At(s.space, s.rect)
}

// LastConfirmation returns the most recent confirmation, or nil
func (s *Surface) LastConfirmation() *Confirmation { return s.confirmed }

// PointerDown selects the design when the pointer hits it and deselects it
// when the pointer lands on the background or empty canvas.
func (s *Surface) PointerDown(x, y float64) {
	s.selected = s.hitDesign(x, y)
}

// Drag moves the design by (dx, dy) canvas pixels
func (s *Surface) Drag(dx, dy float64) error {
	if !s.selected {
		return ErrNotSelected
	}
	s.rect.X += dx
	s.rect.Y += dy
	return nil
}

// Rotate adds deg degrees of clockwise rotation
func (s *Surface) Rotate(deg float64) error {
	if !s.selected {
		return ErrNotSelected
	}
	s.rotation = math.Mod(s.rotation+deg, 360)
	if s.rotation < 0 {
		s.rotation += 360
	}
	return nil
}

// Resize drags the given corner handle by (dx, dy) canvas pixels. The opposite
// corner stays fixed; the delta is applied in the design's rotated frame.
func (s *Surface) Resize(anchor Anchor, dx, dy float64) error {
	if !s.selected {
		return ErrNotSelected
	}

	ldx, ldy := rotate(dx, dy, -s.rotation)
	x0, y0, x1, y1 := 0.0, 0.0, s.rect.Width, s.rect.Height
	aspect := s.rect.Width / s.rect.Height

	switch anchor {
	case TopLeft:
		x0 = math.Min(x0+ldx, x1-MinDesignSize)
		y0 = math.Min(y0+ldy, y1-MinDesignSize)
		if s.lockedAspect {
			y0 = y1 - (x1-x0)/aspect
		}
	case TopRight:
		x1 = math.Max(x1+ldx, x0+MinDesignSize)
		y0 = math.Min(y0+ldy, y1-MinDesignSize)
		if s.lockedAspect {
			y0 = y1 - (x1-x0)/aspect
		}
	case BottomLeft:
		x0 = math.Min(x0+ldx, x1-MinDesignSize)
		y1 = math.Max(y1+ldy, y0+MinDesignSize)
		if s.lockedAspect {
			y1 = y0 + (x1-x0)/aspect
		}
	case BottomRight:
		x1 = math.Max(x1+ldx, x0+MinDesignSize)
		y1 = math.Max(y1+ldy, y0+MinDesignSize)
		if s.lockedAspect {
			y1 = y0 + (x1-x0)/aspect
		}
	}

	ox, oy := rotate(x0, y0, s.rotation)
	s.rect = Rect{
		X:      s.rect.X + ox,
		Y:      s.rect.Y + oy,
		Width:  x1 - x0,
		Height: math.Max(y1-y0, MinDesignSize),
	}
	return nil
}

// Handles returns the selection overlay, or nil when nothing is selected
func (s *Surface) Handles() []Handle {
	if !s.selected {
		return nil
	}
	corners := []struct {
		anchor Anchor
		lx, ly float64
	}{
		{TopLeft, 0, 0},
		{TopRight, s.rect.Width, 0},
		{BottomLeft, 0, s.rect.Height},
		{BottomRight, s.rect.Width, s.rect.Height},
	}
	handles := make([]Handle, 0, len(corners)+1)
	for _, c := range corners {
		hx, hy := s.toCanvas(c.lx, c.ly)
		handles = append(handles, Handle{Kind: "resize", Anchor: c.anchor, X: hx, Y: hy})
	}
	rx, ry := s.toCanvas(s.rect.Width/2, -rotateHandleOffset)
	handles = append(handles, Handle{Kind: "rotate", X: rx, Y: ry})
	return handles
}

// Confirm renders a snapshot of the canvas and emits it with the current
// rectangle. It replaces any earlier confirmation.
func (s *Surface) Confirm() (*Confirmation, error) {
	if err := s.space.Validate(); err != nil {
		return nil, err
	}
	c := &Confirmation{
		Placement: s.Placement(),
		Rotation:  s.rotation,
		Snapshot:  s.render(),
	}
	s.confirmed = c
	return c, nil
}

func (s *Surface) hitDesign(x, y float64) bool {
	lx, ly := rotate(x-s.rect.X, y-s.rect.Y, -s.rotation)
	return lx >= 0 && lx <= s.rect.Width && ly >= 0 && ly <= s.rect.Height
}

// toCanvas maps a point from the design's local frame to canvas space
func (s *Surface) toCanvas(lx, ly float64) (float64, float64) {
	rx, ry := rotate(lx, ly, s.rotation)
	return s.rect.X + rx, s.rect.Y + ry
}

// rotate turns (x, y) clockwise by deg degrees in a y-down frame
func rotate(x, y, deg float64) (float64, float64) {
	if deg == 0 {
		return x, y
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return x*cos - y*sin, x*sin + y*cos
}
