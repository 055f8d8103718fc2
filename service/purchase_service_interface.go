package service

import (
	"context"

	"tee-wizard/models"
)

// PurchaseServiceInterface defines the contract for purchase operations
type PurchaseServiceInterface interface {
	CreateProduct(ctx context.Context, req *models.PurchaseRequest) (*models.PurchaseResult, error)
}
