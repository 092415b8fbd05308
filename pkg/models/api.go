package models

// GradeRequest asks for one sheet to be fetched, processed and scored.
type GradeRequest struct {
	ImageURL    string `json:"image_url" binding:"required,url"`
	Template    string `json:"template,omitempty"`
	Set         string `json:"set,omitempty"`
	AutoEnhance *bool  `json:"auto_enhance,omitempty"`
}

// BatchGradeRequest asks for several sheets to be processed as one session.
type BatchGradeRequest struct {
	ImageURLs   []string `json:"image_urls" binding:"required,min=1"`
	Template    string   `json:"template,omitempty"`
	Set         string   `json:"set,omitempty"`
	AutoEnhance *bool    `json:"auto_enhance,omitempty"`
}

// GradeResponse wraps a sheet result with its stored identifier.
type GradeResponse struct {
	ResultID string       `json:"result_id"`
	Result   *SheetResult `json:"result"`
}
