package service

import (
	"context"

	"tee-wizard/models"
)

// PreviewServiceInterface defines the contract for preview operations
type PreviewServiceInterface interface {
	GeneratePreview(ctx context.Context, storageKey string, pos *models.Position) (*Preview, error)
}
