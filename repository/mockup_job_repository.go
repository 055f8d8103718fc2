package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"tee-wizard/models"
)

// MockupJobRepository records the outcome of vendor mockup jobs
// Implements MockupJobRepositoryInterface
type MockupJobRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMockupJobRepository creates a new MockupJobRepository
func NewMockupJobRepository(db *sql.DB, logger *zap.Logger) *MockupJobRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockupJobRepository{db: db, logger: logger}
}

// Ensure MockupJobRepository implements MockupJobRepositoryInterface
var _ MockupJobRepositoryInterface = (*MockupJobRepository)(nil)

// Record appends one row per finished job
func (r *MockupJobRepository) Record(ctx context.Context, job *models.MockupJob, jobErr error) error {
	errMsg := ""
	if jobErr != nil {
		errMsg = jobErr.Error()
	}

	query := `
		INSERT INTO mockup_jobs (
			product_id, variant_id, task_key, state, mockup_url, public_path,
			availability_attempts, poll_attempts, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ProductID,
		job.VariantID,
		job.TaskKey,
		string(job.State),
		job.MockupURL,
		job.PublicPath,
		job.AvailabilityAttempts,
		job.PollAttempts,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record mockup job: %w", err)
	}

	r.logger.Debug("Mockup job recorded",
		zap.Int64("product_id", job.ProductID),
		zap.Int("variant_id", job.VariantID),
		zap.String("state", string(job.State)),
	)
	return nil
}
