package controller

import (
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tee-wizard/models"
	"tee-wizard/service"
)

// maxReferenceUpload bounds multipart reference uploads (10MB)
const maxReferenceUpload = 10 << 20

// DesignController handles HTTP requests for designs and previews
type DesignController struct {
	designService  service.DesignServiceInterface
	previewService service.PreviewServiceInterface
	logger         *zap.Logger
}

// NewDesignController creates a new DesignController
func NewDesignController(designService service.DesignServiceInterface, previewService service.PreviewServiceInterface, logger *zap.Logger) *DesignController {
	return &DesignController{
		designService:  designService,
		previewService: previewService,
		logger:         orNop(logger),
	}
}

// Generate handles POST /api/designs/generate
func (c *DesignController) Generate(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	var req models.GenerateDesignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	design, err := c.designService.Generate(r.Context(), req.Prompt, req.Quality, req.Background)
	if err != nil {
		writeError(w, c.logger, "Design generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, design)
}

// Preview handles POST /api/designs/preview
// Composites the stored design onto the base shirt and returns a PNG data URL
func (c *DesignController) Preview(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	var req models.PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	preview, err := c.previewService.GeneratePreview(r.Context(), req.StorageKey, req.Position)
	if err != nil {
		writeError(w, c.logger, "Failed to generate preview", err)
		return
	}
	writeJSON(w, http.StatusOK, models.PreviewResponse{DataURL: preview.DataURL()})
}

// UploadReference handles POST /api/designs/reference (multipart field "file")
func (c *DesignController) UploadReference(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReferenceUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, "Failed to read file: "+err.Error())
		return
	}

	upload, err := c.designService.UploadReference(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, c.logger, "Failed to upload image", err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

// Recent handles GET /api/designs/recent?limit=N
func (c *DesignController) Recent(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	designs, err := c.designService.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, c.logger, "Failed to list recent designs", err)
		return
	}
	writeJSON(w, http.StatusOK, designs)
}
