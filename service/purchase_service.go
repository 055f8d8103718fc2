package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tee-wizard/models"
	"tee-wizard/placement"
	"tee-wizard/repository"
)

const (
	// FrontPlacement is the vendor print placement used for designs
	FrontPlacement = "front_large"
	// ProductName is the catalog name of the blank
	ProductName = "Unisex Staple T-Shirt | Bella + Canvas 3001"
	// RetailPrice is the fixed retail price of every variant
	RetailPrice = "29.99"
	// DefaultColour is used for unknown colours
	DefaultColour = "white"
)

// TeeVariants maps shirt colours to vendor catalog variant ids
var TeeVariants = map[string]int{
	"white": 4012,
	"black": 4017,
}

// defaultVendorPosition is used when the user never confirmed a placement
var defaultVendorPosition = models.PrintfulPosition{
	AreaWidth:  int(placement.VendorPrintArea.Width),
	AreaHeight: int(placement.VendorPrintArea.Height),
	Width:      3000,
	Height:     3000,
	Top:        1200,
	Left:       750,
}

// VariantForColour returns the variant id of colour, falling back to white
func VariantForColour(colour string) int {
	if id, ok := TeeVariants[strings.ToLower(strings.TrimSpace(colour))]; ok {
		return id
	}
	return TeeVariants[DefaultColour]
}

// CanvasPlacement tags a posted position as canvas space
func CanvasPlacement(pos *models.Position) placement.Placement {
	return placement.At(placement.CanvasSpace, placement.Rect{
		X:      pos.X,
		Y:      pos.Y,
		Width:  pos.Width,
		Height: pos.Height,
	})
}

// VendorPosition converts a canvas placement into the vendor print area.
// A nil position yields the default centered placement.
func VendorPosition(pos *models.Position) (*models.PrintfulPosition, error) {
	if pos == nil {
		p := defaultVendorPosition
		return &p, nil
	}
	vendor, err := placement.Transform(CanvasPlacement(pos), placement.VendorPrintArea)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidInput, err)
	}
	px := vendor.Pixels()
	return &models.PrintfulPosition{
		AreaWidth:  int(placement.VendorPrintArea.Width),
		AreaHeight: int(placement.VendorPrintArea.Height),
		Width:      px.Dx(),
		Height:     px.Dy(),
		Top:        px.Min.Y,
		Left:       px.Min.X,
	}, nil
}

// MockupRunner runs a mockup job to completion
type MockupRunner interface {
	Run(ctx context.Context, spec MockupJobSpec) (*models.MockupJob, error)
}

// PurchaseService creates store products and their mockups
type PurchaseService struct {
	printful PrintfulClientInterface
	mockups  MockupRunner
	jobs     repository.MockupJobRepositoryInterface
	logger   *zap.Logger
}

// Ensure PurchaseService implements PurchaseServiceInterface
var _ PurchaseServiceInterface = (*PurchaseService)(nil)

// NewPurchaseService creates a new PurchaseService. jobs may be nil.
func NewPurchaseService(
	printful PrintfulClientInterface,
	mockups MockupRunner,
	jobs repository.MockupJobRepositoryInterface,
	logger *zap.Logger,
) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if jobs == nil {
		jobs = repository.NoopMockupJobRepository{}
	}
	return &PurchaseService{printful: printful, mockups: mockups, jobs: jobs, logger: logger}
}

// CreateProduct creates the store product, then renders its mockup on a
// best-effort basis. Only product creation decides the returned error; a
// failed mockup is reported through MockupErr and MockupWarning.
func (s *PurchaseService) CreateProduct(ctx context.Context, req *models.PurchaseRequest) (*models.PurchaseResult, error) {
	if req == nil || strings.TrimSpace(req.ImageURL) == "" {
		return nil, fmt.Errorf("%w: imageUrl is required", models.ErrInvalidInput)
	}

	position, err := VendorPosition(req.Position)
	if err != nil {
		return nil, err
	}
	variantID := VariantForColour(req.Colour)
	name := ProductName
	if title := strings.TrimSpace(req.Title); title != "" {
		name = title
	}

	payload := &models.CreateProductRequest{
		SyncProduct: models.SyncProduct{Name: name, Thumbnail: req.ImageURL},
		SyncVariants: []models.SyncVariant{
			{
				VariantID:   variantID,
				RetailPrice: RetailPrice,
				Files: []models.PrintfulFile{
					{URL: req.ImageURL, Placement: FrontPlacement, Position: position},
				},
			},
		},
	}

	s.logger.Info("Creating printful product",
		zap.Int("variant_id", variantID),
		zap.Any("position", position),
	)
	product, err := s.printful.CreateProduct(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create printful product: %w", err)
	}
	s.logger.Info("Printful product created", zap.Int64("product_id", product.ID))

	result := &models.PurchaseResult{Product: product}
	if s.mockups == nil {
		return result, nil
	}

	job, jobErr := s.mockups.Run(ctx, MockupJobSpec{
		ProductID: product.ID,
		VariantID: variantID,
		ImageURL:  req.ImageURL,
		Position:  position,
	})
	result.Mockup = job
	if jobErr != nil {
		result.MockupErr = jobErr
		result.MockupWarning = "mockup generation failed: " + jobErr.Error()
		s.logger.Warn("Failed to generate mockup",
			zap.Int64("product_id", product.ID),
			zap.Int("variant_id", variantID),
			zap.Error(jobErr),
		)
	}

	if job != nil {
		if err := s.jobs.Record(context.WithoutCancel(ctx), job, jobErr); err != nil {
			s.logger.Warn("Failed to record mockup job", zap.Int64("product_id", product.ID), zap.Error(err))
		}
	}
	return result, nil
}
