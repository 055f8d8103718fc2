package controller

import (
	"net/http"

	"go.uber.org/zap"

	"tee-wizard/models"
	"tee-wizard/service"
)

// ProductController handles HTTP requests for vendor products
type ProductController struct {
	purchaseService service.PurchaseServiceInterface
	logger          *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(purchaseService service.PurchaseServiceInterface, logger *zap.Logger) *ProductController {
	return &ProductController{purchaseService: purchaseService, logger: orNop(logger)}
}

// CreateProduct handles POST /api/products
// The response is 201 whenever the product exists, even if its mockup failed
func (c *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	var req models.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := c.purchaseService.CreateProduct(r.Context(), &req)
	if err != nil {
		writeError(w, c.logger, "Printful product creation failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
