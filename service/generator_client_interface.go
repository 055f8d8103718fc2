package service

import (
	"context"

	"tee-wizard/models"
)

// GeneratorClientInterface defines the contract for the design generation backend
type GeneratorClientInterface interface {
	Generate(ctx context.Context, req *models.GenerateDesignRequest) (string, error)
}
