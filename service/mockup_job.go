package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tee-wizard/config"
	"tee-wizard/models"
	"tee-wizard/utils"
)

var (
	// ErrAvailabilityExhausted is returned when the product never became visible to the mockup generator
	ErrAvailabilityExhausted = errors.New("product was not available after maximum attempts")
	// ErrMissingTaskKey is returned when a mockup task was accepted without a task key
	ErrMissingTaskKey = errors.New("no task key received from printful")
)

const (
	mockupStatusCompleted = "completed"
	mockupFormat          = "jpg"
	mockupPlacement       = "front"
)

// RetryPolicy is a fixed-delay bounded retry schedule
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// MockupJobConfig holds the schedules for both job phases
type MockupJobConfig struct {
	Availability RetryPolicy
	Polling      RetryPolicy
	Format       string
	Placement    string
}

// DefaultMockupJobConfig waits up to 30s for availability and 20s for rendering
func DefaultMockupJobConfig() MockupJobConfig {
	return MockupJobConfig{
		Availability: RetryPolicy{Attempts: 15, Delay: 2 * time.Second},
		Polling:      RetryPolicy{Attempts: 10, Delay: 2 * time.Second},
		Format:       mockupFormat,
		Placement:    mockupPlacement,
	}
}

// MockupJobConfigFrom builds the job schedule from vendor settings, keeping
// defaults for unset values
func MockupJobConfigFrom(cfg *config.PrintfulConfig) MockupJobConfig {
	c := DefaultMockupJobConfig()
	if cfg.AvailabilityAttempts > 0 {
		c.Availability.Attempts = cfg.AvailabilityAttempts
	}
	if cfg.AvailabilityDelay > 0 {
		c.Availability.Delay = cfg.AvailabilityDelay
	}
	if cfg.PollAttempts > 0 {
		c.Polling.Attempts = cfg.PollAttempts
	}
	if cfg.PollDelay > 0 {
		c.Polling.Delay = cfg.PollDelay
	}
	return c
}

// MockupJobSpec identifies what to render
type MockupJobSpec struct {
	ProductID int64
	VariantID int
	ImageURL  string
	Position  *models.PrintfulPosition
}

// MockupJobRunner drives a mockup render from task submission to a saved file
type MockupJobRunner struct {
	vendor MockupVendor
	store  *MockupStore
	cfg    MockupJobConfig
	logger *zap.Logger
}

// NewMockupJobRunner creates a new MockupJobRunner
func NewMockupJobRunner(vendor MockupVendor, store *MockupStore, cfg MockupJobConfig, logger *zap.Logger) *MockupJobRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Format == "" {
		cfg.Format = mockupFormat
	}
	if cfg.Placement == "" {
		cfg.Placement = mockupPlacement
	}
	return &MockupJobRunner{vendor: vendor, store: store, cfg: cfg, logger: logger}
}

// Run executes the job. The returned job is never nil and its State is
// terminal; a non-nil error accompanies every state except COMPLETED.
// Timeouts match models.ErrTimeout and cancellation returns ctx.Err().
func (r *MockupJobRunner) Run(ctx context.Context, spec MockupJobSpec) (*models.MockupJob, error) {
	job := &models.MockupJob{
		ProductID: spec.ProductID,
		VariantID: spec.VariantID,
		State:     models.JobStateWaitAvailability,
	}
	log := r.logger.With(zap.Int64("product_id", spec.ProductID), zap.Int("variant_id", spec.VariantID))

	task, err := r.submit(ctx, job, spec, log)
	if err != nil {
		return r.finish(ctx, job, err, log)
	}
	if task.TaskKey == "" {
		return r.finish(ctx, job, ErrMissingTaskKey, log)
	}
	job.TaskKey = task.TaskKey
	job.Status = task.Status
	job.State = models.JobStateTaskCreated
	log.Info("Mockup task created", zap.String("task_key", task.TaskKey), zap.Int("attempts", job.AvailabilityAttempts))

	mockupURL, err := r.poll(ctx, job, log)
	if err != nil {
		return r.finish(ctx, job, err, log)
	}
	job.MockupURL = mockupURL

	data, err := r.vendor.Download(ctx, mockupURL)
	if err != nil {
		return r.finish(ctx, job, fmt.Errorf("failed to download mockup: %w", err), log)
	}
	filePath, publicPath, err := r.store.Save(utils.MockupFileName(spec.ProductID, spec.VariantID), data)
	if err != nil {
		return r.finish(ctx, job, err, log)
	}
	job.FilePath = filePath
	job.PublicPath = publicPath
	job.State = models.JobStateCompleted
	log.Info("Mockup saved", zap.String("path", filePath), zap.String("public_path", publicPath))
	return job, nil
}

// submit retries task creation while the vendor reports the product as not found
func (r *MockupJobRunner) submit(ctx context.Context, job *models.MockupJob, spec MockupJobSpec, log *zap.Logger) (*models.MockupTask, error) {
	req := &models.MockupTaskRequest{
		VariantIDs: []int{spec.VariantID},
		Format:     r.cfg.Format,
		Files: []models.MockupTaskFile{
			{Placement: r.cfg.Placement, ImageURL: spec.ImageURL, Position: spec.Position},
		},
	}

	policy := r.cfg.Availability
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		job.AvailabilityAttempts = attempt
		task, err := r.vendor.CreateMockupTask(ctx, spec.ProductID, req)
		if err == nil {
			return task, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, models.ErrVendorNotFound) {
			return nil, fmt.Errorf("failed to create mockup task: %w", err)
		}

		log.Info("Product not ready yet",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.Attempts),
		)
		if attempt == policy.Attempts {
			break
		}
		if err := sleep(ctx, policy.Delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w (%d attempts)", ErrAvailabilityExhausted, policy.Attempts)
}

// poll waits then checks the task status until it completes with a mockup URL
func (r *MockupJobRunner) poll(ctx context.Context, job *models.MockupJob, log *zap.Logger) (string, error) {
	job.State = models.JobStatePolling
	policy := r.cfg.Polling
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err := sleep(ctx, policy.Delay); err != nil {
			return "", err
		}
		job.PollAttempts = attempt

		task, err := r.vendor.GetMockupTask(ctx, job.TaskKey)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Warn("Mockup status check failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		job.Status = task.Status
		if task.Status == mockupStatusCompleted {
			if u := task.FirstMockupURL(); u != "" {
				return u, nil
			}
		}
		log.Debug("Mockup not ready", zap.Int("attempt", attempt), zap.String("status", task.Status))
	}
	return "", fmt.Errorf("%w: mockup task %s after %d status checks", models.ErrTimeout, job.TaskKey, policy.Attempts)
}

func (r *MockupJobRunner) finish(ctx context.Context, job *models.MockupJob, err error, log *zap.Logger) (*models.MockupJob, error) {
	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		job.State = models.JobStateCancelled
	case errors.Is(err, models.ErrTimeout):
		job.State = models.JobStateTimedOut
	default:
		job.State = models.JobStateFailed
	}
	log.Warn("Mockup job ended without a mockup", zap.String("state", string(job.State)), zap.Error(err))
	return job, err
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
