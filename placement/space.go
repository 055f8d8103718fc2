package placement

import (
	"fmt"
	"image"
	"math"

	"tee-wizard/models"
)

// Space is a named reference frame with fixed dimensions
type Space struct {
	Name   string
	Width  float64
	Height float64
}

var (
	// CanvasSpace is the on-screen editing canvas
	CanvasSpace = Space{Name: "canvas", Width: 600, Height: 600}
	// VendorPrintArea is the print-on-demand vendor's front print area
	VendorPrintArea = Space{Name: "vendor-print-area", Width: 4500, Height: 5400}
)

// ImageSpace returns the space of a decoded raster with the given pixel size
func ImageSpace(width, height int) Space {
	return Space{Name: "image", Width: float64(width), Height: float64(height)}
}

// BoundsSpace returns the space of an image with the given bounds
func BoundsSpace(b image.Rectangle) Space {
	return ImageSpace(b.Dx(), b.Dy())
}

// Validate rejects spaces that cannot be scaled to or from
func (s Space) Validate() error {
	if !(s.Width > 0) || !(s.Height > 0) || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
		return &models.ConfigurationError{
			Field:  fmt.Sprintf("coordinate space %q", s.Name),
			Reason: fmt.Sprintf("must have positive dimensions, got %gx%g", s.Width, s.Height),
		}
	}
	return nil
}

func (s Space) String() string {
	return fmt.Sprintf("%s(%gx%g)", s.Name, s.Width, s.Height)
}
