package models

import "encoding/json"

// PrintfulPosition places a file inside the vendor print area
type PrintfulPosition struct {
	AreaWidth  int `json:"area_width"`
	AreaHeight int `json:"area_height"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	Top        int `json:"top"`
	Left       int `json:"left"`
}

// PrintfulFile is a print file attached to a sync variant
type PrintfulFile struct {
	URL       string            `json:"url"`
	Placement string            `json:"placement"`
	Position  *PrintfulPosition `json:"position,omitempty"`
}

// SyncProduct holds product-level metadata
type SyncProduct struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// SyncVariant is one purchasable variant of a store product
type SyncVariant struct {
	VariantID   int            `json:"variant_id"`
	RetailPrice string         `json:"retail_price"`
	Files       []PrintfulFile `json:"files"`
}

// CreateProductRequest represents the body of POST /store/products
type CreateProductRequest struct {
	SyncProduct  SyncProduct   `json:"sync_product"`
	SyncVariants []SyncVariant `json:"sync_variants"`
}

// Product is the store product returned by the vendor.
// Variants is kept raw since the vendor reports either a count or a list.
type Product struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"external_id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Variants   json.RawMessage `json:"variants,omitempty"`
}

// MockupTaskFile is a design file for the mockup generator
type MockupTaskFile struct {
	Placement string            `json:"placement"`
	ImageURL  string            `json:"image_url"`
	Position  *PrintfulPosition `json:"position,omitempty"`
}

// MockupTaskRequest represents the body of POST /mockup-generator/create-task/{productId}
type MockupTaskRequest struct {
	VariantIDs []int            `json:"variant_ids"`
	Format     string           `json:"format"`
	Files      []MockupTaskFile `json:"files"`
}

// Mockup is a single rendered mockup asset
type Mockup struct {
	Placement  string `json:"placement,omitempty"`
	VariantIDs []int  `json:"variant_ids,omitempty"`
	MockupURL  string `json:"mockup_url"`
}

// MockupTask is the vendor-side render task, as created and as polled
type MockupTask struct {
	TaskKey string   `json:"task_key"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
	Mockups []Mockup `json:"mockups,omitempty"`
}

// FirstMockupURL returns the first non-empty result URL, if any
func (t *MockupTask) FirstMockupURL() string {
	for _, m := range t.Mockups {
		if m.MockupURL != "" {
			return m.MockupURL
		}
	}
	return ""
}
