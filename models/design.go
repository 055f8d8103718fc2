package models

import "time"

// GenerateDesignRequest is the body sent to the design generation backend
type GenerateDesignRequest struct {
	Prompt     string `json:"prompt"`
	Quality    string `json:"quality"`
	Background string `json:"background"`
}

// GenerateDesignResponse is what the generation backend answers with
type GenerateDesignResponse struct {
	URL string `json:"url"`
}

// GeneratedDesign is a freshly generated, transparent design image
type GeneratedDesign struct {
	ImageURL   string `json:"imageUrl"`
	StorageKey string `json:"storageKey"`
}

// DesignRecord represents a generated design in the designs table
type DesignRecord struct {
	ID         int64     `json:"id"`
	StorageKey string    `json:"storageKey"`
	ImageURL   string    `json:"imageUrl"`
	Prompt     string    `json:"prompt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReferenceUpload is the result of uploading a user reference image
type ReferenceUpload struct {
	ImageURL   string `json:"imageUrl"`
	StorageKey string `json:"storageKey"`
	Filename   string `json:"filename"`
}

// Position is a placement rectangle as posted by the editing canvas
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PreviewRequest represents the request body for POST /api/designs/preview
type PreviewRequest struct {
	StorageKey string    `json:"storageKey"`
	Position   *Position `json:"position,omitempty"`
}

// PreviewResponse carries the composited preview as a PNG data URL
type PreviewResponse struct {
	DataURL string `json:"dataUrl"`
}
