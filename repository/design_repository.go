package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"tee-wizard/models"
)

// maxRecentDesigns caps ListRecent
const maxRecentDesigns = 50

// DesignRepository handles database operations for generated designs
// Implements DesignRepositoryInterface
type DesignRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDesignRepository creates a new DesignRepository
func NewDesignRepository(db *sql.DB, logger *zap.Logger) *DesignRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DesignRepository{db: db, logger: logger}
}

// Ensure DesignRepository implements DesignRepositoryInterface
var _ DesignRepositoryInterface = (*DesignRepository)(nil)

// Insert stores a generated design. Re-inserting a storage key is a no-op.
func (r *DesignRepository) Insert(ctx context.Context, design *models.DesignRecord) error {
	query := `
		INSERT INTO designs (storage_key, image_url, prompt)
		VALUES ($1, $2, $3)
		ON CONFLICT (storage_key) DO NOTHING
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, design.StorageKey, design.ImageURL, design.Prompt).
		Scan(&design.ID, &design.CreatedAt)
	if err == sql.ErrNoRows {
		r.logger.Debug("Design already recorded", zap.String("storage_key", design.StorageKey))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert design: %w", err)
	}

	r.logger.Info("Design recorded", zap.Int64("id", design.ID), zap.String("storage_key", design.StorageKey))
	return nil
}

// ListRecent returns the most recently generated designs, newest first
func (r *DesignRepository) ListRecent(ctx context.Context, limit int) ([]models.DesignRecord, error) {
	if limit <= 0 || limit > maxRecentDesigns {
		limit = maxRecentDesigns
	}

	query := `
		SELECT id, storage_key, image_url, prompt, created_at
		FROM designs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	designs := []models.DesignRecord{}
	for rows.Next() {
		var d models.DesignRecord
		if err := rows.Scan(&d.ID, &d.StorageKey, &d.ImageURL, &d.Prompt, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		designs = append(designs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate designs: %w", err)
	}
	return designs, nil
}
