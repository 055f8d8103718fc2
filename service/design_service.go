package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"tee-wizard/models"
	"tee-wizard/repository"
	"tee-wizard/storage"
	"tee-wizard/utils"
)

const (
	defaultQuality    = "high"
	defaultBackground = "transparent"
	maxRecentDesigns  = 50
	defaultRecent     = 12
)

// DesignService handles design generation, reference uploads and history
type DesignService struct {
	generator GeneratorClientInterface
	objects   storage.ObjectStore
	designs   repository.DesignRepositoryInterface
	logger    *zap.Logger
}

// Ensure DesignService implements DesignServiceInterface
var _ DesignServiceInterface = (*DesignService)(nil)

// NewDesignService creates a new DesignService. designs may be nil.
func NewDesignService(
	generator GeneratorClientInterface,
	objects storage.ObjectStore,
	designs repository.DesignRepositoryInterface,
	logger *zap.Logger,
) *DesignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if designs == nil {
		designs = repository.NoopDesignRepository{}
	}
	return &DesignService{generator: generator, objects: objects, designs: designs, logger: logger}
}

// Generate creates a design from prompt. Empty quality and background
// default to "high" and "transparent".
func (s *DesignService) Generate(ctx context.Context, prompt, quality, background string) (*models.GeneratedDesign, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", models.ErrInvalidInput)
	}
	if quality == "" {
		quality = defaultQuality
	}
	if background == "" {
		background = defaultBackground
	}

	imageURL, err := s.generator.Generate(ctx, &models.GenerateDesignRequest{
		Prompt:     prompt,
		Quality:    quality,
		Background: background,
	})
	if err != nil {
		return nil, err
	}
	key, err := utils.StorageKeyFromURL(imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstream, err)
	}

	record := &models.DesignRecord{StorageKey: key, ImageURL: imageURL, Prompt: prompt}
	if err := s.designs.Insert(ctx, record); err != nil {
		s.logger.Warn("Failed to record generated design", zap.String("storage_key", key), zap.Error(err))
	}

	s.logger.Info("Design generated", zap.String("storage_key", key))
	return &models.GeneratedDesign{ImageURL: imageURL, StorageKey: key}, nil
}

// UploadReference stores a user reference image under a unique key
func (s *DesignService) UploadReference(ctx context.Context, filename, contentType string, data []byte) (*models.ReferenceUpload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", models.ErrInvalidInput)
	}
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	key := utils.UniqueObjectKey(storage.ReferencePrefix, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.objects.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload reference image: %w", err)
	}

	s.logger.Info("Reference image uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return &models.ReferenceUpload{
		ImageURL:   s.objects.PublicURL(key),
		StorageKey: key,
		Filename:   filename,
	}, nil
}

// Recent lists recently generated designs, newest first
func (s *DesignService) Recent(ctx context.Context, limit int) ([]models.DesignRecord, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	limit = min(limit, maxRecentDesigns)
	designs, err := s.designs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent designs: %w", err)
	}
	return designs, nil
}
