package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"tee-wizard/config"
	"tee-wizard/models"
)

func newTestPrintful(t *testing.T, handler http.HandlerFunc) *PrintfulClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.PrintfulConfig{
		Token:             "secret-token",
		StoreID:           "77",
		BaseURL:           srv.URL + "/",
		RateLimitRequests: 120,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	}
	return NewPrintfulClient(cfg,
		WithHTTPClient(srv.Client()),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithPrintfulLogger(zaptest.NewLogger(t)),
	)
}

func writeEnvelope(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestPrintfulClient_CreateProduct(t *testing.T) {
	var got models.CreateProductRequest
	client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/store/products", r.URL.Path)
		assert.Equal(t, "77", r.URL.Query().Get("store_id"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		writeEnvelope(w, http.StatusOK, `{"code":200,"result":{"id":381,"external_id":"ext-1","name":"Tee","variants":1}}`)
	})

	product, err := client.CreateProduct(context.Background(), &models.CreateProductRequest{
		SyncProduct: models.SyncProduct{Name: ProductName},
		SyncVariants: []models.SyncVariant{{
			VariantID:   4012,
			RetailPrice: RetailPrice,
			Files: []models.PrintfulFile{{
				URL:       "https://cdn.example.com/d.png",
				Placement: FrontPlacement,
				Position:  &models.PrintfulPosition{AreaWidth: 4500, AreaHeight: 5400, Width: 1800, Height: 1620, Top: 1890, Left: 1350},
			}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(381), product.ID)
	assert.Equal(t, "ext-1", product.ExternalID)
	assert.JSONEq(t, "1", string(product.Variants))

	require.Len(t, got.SyncVariants, 1)
	assert.Equal(t, 4012, got.SyncVariants[0].VariantID)
	assert.Equal(t, 1620, got.SyncVariants[0].Files[0].Position.Height)
}

func TestPrintfulClient_ErrorEnvelope(t *testing.T) {
	client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, `{"code":400,"result":"Invalid","error":{"reason":"BadRequest","message":"Variant not found"}}`)
	})

	_, err := client.CreateProduct(context.Background(), &models.CreateProductRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.NotErrorIs(t, err, models.ErrVendorNotFound)

	var upstream *models.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Equal(t, "BadRequest: Variant not found", upstream.Message)
}

func TestPrintfulClient_CreateMockupTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/mockup-generator/create-task/381", r.URL.Path)
			var req models.MockupTaskRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []int{4012}, req.VariantIDs)
			assert.Equal(t, "jpg", req.Format)

			writeEnvelope(w, http.StatusOK, `{"code":200,"result":{"task_key":"gt-1","status":"pending"}}`)
		})

		task, err := client.CreateMockupTask(context.Background(), 381, &models.MockupTaskRequest{
			VariantIDs: []int{4012},
			Format:     "jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, "gt-1", task.TaskKey)
		assert.Equal(t, "pending", task.Status)
	})

	t.Run("not found status", func(t *testing.T) {
		client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusNotFound, `{"code":404,"result":"Not Found","error":{"reason":"NotFound","message":"Product not found"}}`)
		})

		_, err := client.CreateMockupTask(context.Background(), 381, &models.MockupTaskRequest{})
		assert.ErrorIs(t, err, models.ErrVendorNotFound)
	})

	t.Run("not found code in ok response", func(t *testing.T) {
		client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, `{"code":404,"error":"Product not found"}`)
		})

		_, err := client.CreateMockupTask(context.Background(), 381, &models.MockupTaskRequest{})
		assert.ErrorIs(t, err, models.ErrVendorNotFound)
	})
}

func TestPrintfulClient_GetMockupTask(t *testing.T) {
	client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/mockup-generator/task", r.URL.Path)
		assert.Equal(t, "gt-1", r.URL.Query().Get("task_key"))
		assert.Empty(t, r.Header.Get("Content-Type"))

		writeEnvelope(w, http.StatusOK, `{"code":200,"result":{"task_key":"gt-1","status":"completed","mockups":[{"placement":"front","variant_ids":[4012],"mockup_url":"https://files.example.com/m.jpg"}]}}`)
	})

	task, err := client.GetMockupTask(context.Background(), "gt-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", task.Status)
	assert.Equal(t, "https://files.example.com/m.jpg", task.FirstMockupURL())
}

func TestPrintfulClient_NonJSONFailure(t *testing.T) {
	client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.GetMockupTask(context.Background(), "gt-1")
	var upstream *models.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}

func TestPrintfulClient_Download(t *testing.T) {
	client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/m.jpg" {
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("jpeg-bytes"))
			return
		}
		http.NotFound(w, r)
	})

	data, err := client.Download(context.Background(), client.baseURL+"/m.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	_, err = client.Download(context.Background(), client.baseURL+"/missing.jpg")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestPrintfulClient_LimiterHonoursContext(t *testing.T) {
	client := newTestPrintful(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, `{"code":200,"result":{}}`)
	})
	client.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := client.GetMockupTask(context.Background(), "gt-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.GetMockupTask(ctx, "gt-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrUpstream))
}

func TestNewPrintfulClient_DefaultLimiter(t *testing.T) {
	client := NewPrintfulClient(&config.PrintfulConfig{
		BaseURL:           "https://api.printful.com",
		RateLimitRequests: 120,
		RateLimitWindow:   time.Minute,
	})
	require.NotNil(t, client.limiter)
	assert.InDelta(t, 2.0, float64(client.limiter.Limit()), 1e-9)
	assert.Equal(t, 1, client.limiter.Burst())
}
