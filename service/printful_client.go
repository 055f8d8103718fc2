package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tee-wizard/config"
	"tee-wizard/models"
)

const (
	printfulService     = "printful"
	maxPrintfulBodySize = 10 << 20
	maxMockupFileSize   = 25 << 20
)

// PrintfulClient talks to the Printful REST API
type PrintfulClient struct {
	baseURL    string
	token      string
	storeID    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Ensure PrintfulClient implements PrintfulClientInterface
var _ PrintfulClientInterface = (*PrintfulClient)(nil)

// PrintfulOption configures a PrintfulClient
type PrintfulOption func(*PrintfulClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) PrintfulOption {
	return func(c *PrintfulClient) {
		c.httpClient = client
	}
}

// WithLimiter replaces the rate limiter built from config
func WithLimiter(limiter *rate.Limiter) PrintfulOption {
	return func(c *PrintfulClient) {
		c.limiter = limiter
	}
}

// WithPrintfulLogger sets the client logger
func WithPrintfulLogger(logger *zap.Logger) PrintfulOption {
	return func(c *PrintfulClient) {
		c.logger = logger
	}
}

// NewPrintfulClient creates a client limited to cfg.RateLimitRequests per cfg.RateLimitWindow
func NewPrintfulClient(cfg *config.PrintfulConfig, opts ...PrintfulOption) *PrintfulClient {
	c := &PrintfulClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		storeID:    cfg.StoreID,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     zap.NewNop(),
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.RateLimitWindow/time.Duration(cfg.RateLimitRequests)), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common Printful response wrapper
type envelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// errorMessage flattens the error field, which is either a string or {reason, message}
func (e *envelope) errorMessage() string {
	if len(e.Error) == 0 || string(e.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil && (obj.Reason != "" || obj.Message != "") {
		if obj.Reason == "" {
			return obj.Message
		}
		return obj.Reason + ": " + obj.Message
	}
	return string(e.Error)
}

// CreateProduct creates a store sync product
func (c *PrintfulClient) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/store/products", nil, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateMockupTask submits a mockup render task. A freshly created product
// may not be visible yet, in which case the error matches models.ErrVendorNotFound.
func (c *PrintfulClient) CreateMockupTask(ctx context.Context, productID int64, req *models.MockupTaskRequest) (*models.MockupTask, error) {
	var task models.MockupTask
	path := fmt.Sprintf("/mockup-generator/create-task/%d", productID)
	if err := c.do(ctx, http.MethodPost, path, nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetMockupTask fetches the current state of a mockup task
func (c *PrintfulClient) GetMockupTask(ctx context.Context, taskKey string) (*models.MockupTask, error) {
	var task models.MockupTask
	query := url.Values{"task_key": []string{taskKey}}
	if err := c.do(ctx, http.MethodGet, "/mockup-generator/task", query, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Download fetches a rendered mockup asset. Asset URLs are served from a CDN,
// so no auth header is sent.
func (c *PrintfulClient) Download(ctx context.Context, assetURL string) ([]byte, error) {
	return FetchURL(ctx, c.httpClient, assetURL, maxMockupFileSize)
}

func (c *PrintfulClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if query == nil {
		query = url.Values{}
	}
	if c.storeID != "" {
		query.Set("store_id", c.storeID)
	}
	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode printful request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build printful request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("printful %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPrintfulBodySize))
	if err != nil {
		return fmt.Errorf("failed to read printful response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	status := resp.StatusCode
	if decodeErr == nil && env.Code >= 400 {
		status = env.Code
	}
	if status < 200 || status >= 300 {
		msg := string(raw)
		if decodeErr == nil {
			if m := env.errorMessage(); m != "" {
				msg = m
			}
		}
		c.logger.Warn("Printful request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("error", msg),
		)
		return models.NewUpstreamError(printfulService, status, msg)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode printful response: %w", decodeErr)
	}

	c.logger.Debug("Printful request succeeded",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
	)
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode printful result: %w", err)
	}
	return nil
}
