package repository

import (
	"context"

	"tee-wizard/models"
)

// NoopDesignRepository is used when no database is configured
type NoopDesignRepository struct{}

var _ DesignRepositoryInterface = NoopDesignRepository{}

func (NoopDesignRepository) Insert(ctx context.Context, design *models.DesignRecord) error {
	return nil
}

func (NoopDesignRepository) ListRecent(ctx context.Context, limit int) ([]models.DesignRecord, error) {
	return []models.DesignRecord{}, nil
}

// NoopMockupJobRepository is used when no database is configured
type NoopMockupJobRepository struct{}

var _ MockupJobRepositoryInterface = NoopMockupJobRepository{}

func (NoopMockupJobRepository) Record(ctx context.Context, job *models.MockupJob, jobErr error) error {
	return nil
}
