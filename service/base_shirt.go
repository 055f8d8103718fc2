package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"tee-wizard/models"
)

// Logo placement on the generated base shirt, in base pixels.
const (
	BaseLogoSize         = 80
	BaseLogoTopOffset    = 20 + 180
	BaseLogoRightOffset  = 20 + 300
	maxBaseShirtFileSize = 25 << 20
)

// ErrBodyTooLarge is returned when a download is longer than its size cap
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// LoaderFunc fetches the base shirt bytes from wherever it lives
type LoaderFunc func(ctx context.Context) ([]byte, error)

// BaseShirtCache keeps the decoded base shirt in memory after the first
// successful load. Failed loads are not cached. Concurrent first calls may
// each load; the last store wins and every loaded image is equivalent.
type BaseShirtCache struct {
	load   LoaderFunc
	logger *zap.Logger
	cached atomic.Pointer[image.NRGBA]
}

// NewBaseShirtCache creates a cache around load
func NewBaseShirtCache(load LoaderFunc, logger *zap.Logger) *BaseShirtCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseShirtCache{load: load, logger: logger}
}

// GetOrLoad returns the cached base image, loading it on first use.
// The returned image is shared and must not be modified.
func (c *BaseShirtCache) GetOrLoad(ctx context.Context) (*image.NRGBA, error) {
	if img := c.cached.Load(); img != nil {
		return img, nil
	}

	data, err := c.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: base shirt: %w", models.ErrSourceRetrieval, err)
	}
	decoded, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: base shirt: %w", models.ErrSourceRetrieval, err)
	}

	img := imaging.Clone(decoded)
	c.cached.Store(img)
	c.logger.Info("Base shirt loaded", zap.Stringer("bounds", img.Bounds()))
	return img, nil
}

// HTTPLoader fetches the base shirt from a URL
func HTTPLoader(client *http.Client, url string) LoaderFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) ([]byte, error) {
		return FetchURL(ctx, client, url, maxBaseShirtFileSize)
	}
}

// FileLoader reads the base shirt from disk
func FileLoader(path string) LoaderFunc {
	return func(ctx context.Context) ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read base shirt %s: %w", path, err)
		}
		return data, nil
	}
}

// DriveLoader downloads the base shirt from Google Drive
func DriveLoader(drive DriveServiceInterface, fileID string) LoaderFunc {
	return func(ctx context.Context) ([]byte, error) {
		return drive.DownloadFile(ctx, fileID)
	}
}

// FetchURL downloads url with a size cap, mapping non-2xx responses to
// an UpstreamError.
func FetchURL(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, models.NewUpstreamError(url, resp.StatusCode, string(bytes.TrimSpace(body)))
	}
	data, err := readCapped(resp.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}

// readCapped reads all of r, failing instead of truncating when r holds
// more than limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return data, nil
}

// ComposeBaseShirt stamps the logo onto the plain shirt, scaled to
// BaseLogoSize and anchored from the top-right corner.
func ComposeBaseShirt(shirt, logo image.Image) *image.NRGBA {
	out := imaging.Clone(shirt)
	scaled := imaging.Fill(logo, BaseLogoSize, BaseLogoSize, imaging.Center, imaging.Lanczos)
	left := out.Bounds().Dx() - BaseLogoSize - BaseLogoRightOffset
	return imaging.Overlay(out, scaled, image.Pt(left, BaseLogoTopOffset), 1.0)
}
