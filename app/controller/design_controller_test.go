package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tee-wizard/models"
	"tee-wizard/service"
)

type fakeDesignService struct {
	generated   *models.GeneratedDesign
	generateErr error
	prompts     []string

	upload      *models.ReferenceUpload
	uploadErr   error
	uploadNames []string
	uploadTypes []string
	uploadData  [][]byte

	recent []models.DesignRecord
	limits []int
}

func (f *fakeDesignService) Generate(ctx context.Context, prompt, quality, background string) (*models.GeneratedDesign, error) {
	f.prompts = append(f.prompts, prompt)
	return f.generated, f.generateErr
}

func (f *fakeDesignService) UploadReference(ctx context.Context, filename, contentType string, data []byte) (*models.ReferenceUpload, error) {
	f.uploadNames = append(f.uploadNames, filename)
	f.uploadTypes = append(f.uploadTypes, contentType)
	f.uploadData = append(f.uploadData, data)
	return f.upload, f.uploadErr
}

func (f *fakeDesignService) Recent(ctx context.Context, limit int) ([]models.DesignRecord, error) {
	f.limits = append(f.limits, limit)
	return f.recent, nil
}

type fakePreviewService struct {
	preview   *service.Preview
	err       error
	keys      []string
	positions []*models.Position
}

func (f *fakePreviewService) GeneratePreview(ctx context.Context, storageKey string, pos *models.Position) (*service.Preview, error) {
	f.keys = append(f.keys, storageKey)
	f.positions = append(f.positions, pos)
	return f.preview, f.err
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestDesignController_Generate(t *testing.T) {
	designs := &fakeDesignService{generated: &models.GeneratedDesign{ImageURL: "https://cdn.example.com/generated/a.png", StorageKey: "generated/a.png"}}
	c := NewDesignController(designs, &fakePreviewService{}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/designs/generate", strings.NewReader(`{"prompt":"cat","quality":"high","background":"transparent"}`))
	rec := httptest.NewRecorder()
	c.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"imageUrl":"https://cdn.example.com/generated/a.png","storageKey":"generated/a.png"}`, rec.Body.String())
	assert.Equal(t, []string{"cat"}, designs.prompts)
}

func TestDesignController_GenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		err    error
		want   int
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", nil, http.StatusBadRequest},
		{"invalid input", http.MethodPost, `{"prompt":""}`, fmt.Errorf("%w: prompt is required", models.ErrInvalidInput), http.StatusBadRequest},
		{"upstream", http.MethodPost, `{"prompt":"cat"}`, models.NewUpstreamError("design generator", 500, "boom"), http.StatusBadGateway},
		{"internal", http.MethodPost, `{"prompt":"cat"}`, errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDesignController(&fakeDesignService{generateErr: tt.err}, &fakePreviewService{}, zaptest.NewLogger(t))
			rec := httptest.NewRecorder()
			c.Generate(rec, httptest.NewRequest(tt.method, "/api/designs/generate", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDesignController_Preview(t *testing.T) {
	previews := &fakePreviewService{preview: &service.Preview{PNG: []byte{0x89, 'P', 'N', 'G'}}}
	c := NewDesignController(&fakeDesignService{}, previews, zaptest.NewLogger(t))

	body := `{"storageKey":"generated/a.png","position":{"x":180,"y":210,"width":240,"height":180}}`
	rec := httptest.NewRecorder()
	c.Preview(rec, httptest.NewRequest(http.MethodPost, "/api/designs/preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "data:image/png;base64,iVBORw==", resp.DataURL)
	assert.Equal(t, []string{"generated/a.png"}, previews.keys)
	assert.Equal(t, &models.Position{X: 180, Y: 210, Width: 240, Height: 180}, previews.positions[0])
}

func TestDesignController_PreviewWithoutPosition(t *testing.T) {
	previews := &fakePreviewService{preview: &service.Preview{PNG: []byte("png")}}
	c := NewDesignController(&fakeDesignService{}, previews, nil)

	rec := httptest.NewRecorder()
	c.Preview(rec, httptest.NewRequest(http.MethodPost, "/api/designs/preview", strings.NewReader(`{"storageKey":"generated/a.png"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, previews.positions[0])
}

func TestDesignController_PreviewSourceFailure(t *testing.T) {
	previews := &fakePreviewService{err: fmt.Errorf("%w: design generated/a.png: not found", models.ErrSourceRetrieval)}
	c := NewDesignController(&fakeDesignService{}, previews, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	c.Preview(rec, httptest.NewRequest(http.MethodPost, "/api/designs/preview", strings.NewReader(`{"storageKey":"generated/a.png"}`)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeError(t, rec), "failed to retrieve source image")
}

func newMultipart(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDesignController_UploadReference(t *testing.T) {
	designs := &fakeDesignService{upload: &models.ReferenceUpload{
		ImageURL:   "https://tee-bucket.s3.us-east-1.amazonaws.com/reference-images/x.png",
		StorageKey: "reference-images/x.png",
		Filename:   "cat.png",
	}}
	c := NewDesignController(designs, &fakePreviewService{}, zaptest.NewLogger(t))

	body, contentType := newMultipart(t, "file", "cat.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/designs/reference", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	c.UploadReference(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cat.png"}, designs.uploadNames)
	assert.Equal(t, []string{"image/png"}, designs.uploadTypes)
	assert.Equal(t, [][]byte{[]byte("png-bytes")}, designs.uploadData)
	assert.Contains(t, rec.Body.String(), "reference-images/x.png")
}

func TestDesignController_UploadReferenceMissingFile(t *testing.T) {
	c := NewDesignController(&fakeDesignService{}, &fakePreviewService{}, nil)

	body, contentType := newMultipart(t, "other", "cat.png", "image/png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/designs/reference", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	c.UploadReference(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDesignController_Recent(t *testing.T) {
	designs := &fakeDesignService{recent: []models.DesignRecord{{ID: 1, StorageKey: "generated/a.png"}}}
	c := NewDesignController(designs, &fakePreviewService{}, nil)

	rec := httptest.NewRecorder()
	c.Recent(rec, httptest.NewRequest(http.MethodGet, "/api/designs/recent?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storageKey":"generated/a.png"`)
	assert.Equal(t, []int{5}, designs.limits)

	rec = httptest.NewRecorder()
	c.Recent(rec, httptest.NewRequest(http.MethodGet, "/api/designs/recent?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
