package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tee-wizard/config"
	"tee-wizard/models"
)

const generatorService = "design generator"

// GeneratorClient calls the design generation backend
type GeneratorClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure GeneratorClient implements GeneratorClientInterface
var _ GeneratorClientInterface = (*GeneratorClient)(nil)

// NewGeneratorClient creates a new GeneratorClient. client may be nil.
func NewGeneratorClient(cfg *config.GeneratorConfig, client *http.Client, logger *zap.Logger) *GeneratorClient {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

// Generate asks the backend for a design and returns its image URL
func (c *GeneratorClient) Generate(ctx context.Context, req *models.GenerateDesignRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("design generation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return "", models.NewUpstreamError(generatorService, resp.StatusCode, msg)
	}

	var out models.GenerateDesignResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}
	if out.URL == "" {
		return "", models.NewUpstreamError(generatorService, resp.StatusCode, "response has no url")
	}
	return out.URL, nil
}
