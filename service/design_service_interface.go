package service

import (
	"context"

	"tee-wizard/models"
)

// DesignServiceInterface defines the contract for design operations
type DesignServiceInterface interface {
	Generate(ctx context.Context, prompt, quality, background string) (*models.GeneratedDesign, error)
	UploadReference(ctx context.Context, filename, contentType string, data []byte) (*models.ReferenceUpload, error)
	Recent(ctx context.Context, limit int) ([]models.DesignRecord, error)
}
