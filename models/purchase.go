package models

// PurchaseRequest represents the request body for POST /api/products
type PurchaseRequest struct {
	ImageURL string    `json:"imageUrl"`
	Colour   string    `json:"colour"`
	Title    string    `json:"title"`
	Position *Position `json:"position,omitempty"`
}

// PurchaseResult separates the product creation outcome from the cosmetic mockup step.
// A non-nil MockupErr never turns a created product into a failure.
type PurchaseResult struct {
	Product       *Product   `json:"product"`
	Mockup        *MockupJob `json:"mockup,omitempty"`
	MockupErr     error      `json:"-"`
	MockupWarning string     `json:"mockupWarning,omitempty"`
}
