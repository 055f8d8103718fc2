package repository

import (
	"context"

	"tee-wizard/models"
)

// DesignRepositoryInterface defines the contract for generated design history
type DesignRepositoryInterface interface {
	Insert(ctx context.Context, design *models.DesignRecord) error
	ListRecent(ctx context.Context, limit int) ([]models.DesignRecord, error)
}

// MockupJobRepositoryInterface defines the contract for recording mockup job outcomes
type MockupJobRepositoryInterface interface {
	Record(ctx context.Context, job *models.MockupJob, jobErr error) error
}
