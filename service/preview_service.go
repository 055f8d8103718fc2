package service

import (
	"context"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"

	"tee-wizard/models"
	"tee-wizard/placement"
	"tee-wizard/storage"
	"tee-wizard/utils"
)

// Preview is a composited shirt preview
type Preview struct {
	PNG []byte
	// Box is where the design was fitted, in base image pixels
	Box image.Rectangle
}

// DataURL returns the preview as an inline PNG data URL
func (p *Preview) DataURL() string {
	return utils.PNGDataURL(p.PNG)
}

// PreviewService composites stored designs onto the base shirt
type PreviewService struct {
	objects    storage.ObjectStore
	baseShirt  *BaseShirtCache
	compositor *Compositor
	logger     *zap.Logger
}

// Ensure PreviewService implements PreviewServiceInterface
var _ PreviewServiceInterface = (*PreviewService)(nil)

// NewPreviewService creates a new PreviewService
func NewPreviewService(objects storage.ObjectStore, baseShirt *BaseShirtCache, compositor *Compositor, logger *zap.Logger) *PreviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if compositor == nil {
		compositor = NewCompositor(logger)
	}
	return &PreviewService{objects: objects, baseShirt: baseShirt, compositor: compositor, logger: logger}
}

// GeneratePreview renders the design stored under storageKey onto the base
// shirt. pos is in canvas space; nil places a centered square covering two
// thirds of the canvas width.
func (s *PreviewService) GeneratePreview(ctx context.Context, storageKey string, pos *models.Position) (*Preview, error) {
	storageKey = strings.TrimPrefix(strings.TrimSpace(storageKey), "/")
	if storageKey == "" {
		return nil, fmt.Errorf("%w: storageKey is required", models.ErrInvalidInput)
	}

	canvas, err := s.canvasPlacement(pos)
	if err != nil {
		return nil, err
	}

	data, err := s.objects.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: design %s: %w", models.ErrSourceRetrieval, storageKey, err)
	}
	design, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: design %s: %w", models.ErrSourceRetrieval, storageKey, err)
	}
	base, err := s.baseShirt.GetOrLoad(ctx)
	if err != nil {
		return nil, err
	}

	imagePlacement, err := placement.Transform(canvas, placement.BoundsSpace(base.Bounds()))
	if err != nil {
		return nil, err
	}
	box := imagePlacement.Pixels()
	if box.Empty() {
		return nil, fmt.Errorf("%w: placement %s rounds to an empty box", models.ErrInvalidInput, canvas)
	}

	out, err := s.compositor.Composite(base, design, box)
	if err != nil {
		return nil, fmt.Errorf("failed to composite preview: %w", err)
	}
	png, err := EncodePNG(out)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Preview generated",
		zap.String("storage_key", storageKey),
		zap.Stringer("canvas", canvas),
		zap.Stringer("box", box),
	)
	return &Preview{PNG: png, Box: box}, nil
}

func (s *PreviewService) canvasPlacement(pos *models.Position) (placement.Placement, error) {
	if pos == nil {
		return placement.DefaultPlacement(placement.CanvasSpace, placement.DefaultFraction, 1)
	}
	p := CanvasPlacement(pos)
	if !p.Valid() {
		return placement.Placement{}, fmt.Errorf("%w: %w", models.ErrInvalidInput, placement.ErrInvalidRect)
	}
	return p, nil
}
