package service

import (
	"context"

	"tee-wizard/models"
)

// PrintfulClientInterface defines the contract for print vendor operations
type PrintfulClientInterface interface {
	MockupVendor
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
}

// MockupVendor is the subset of vendor operations the mockup job needs
type MockupVendor interface {
	CreateMockupTask(ctx context.Context, productID int64, req *models.MockupTaskRequest) (*models.MockupTask, error)
	GetMockupTask(ctx context.Context, taskKey string) (*models.MockupTask, error)
	Download(ctx context.Context, assetURL string) ([]byte, error)
}
