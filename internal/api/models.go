package api

// Common request/response structures

// ExtractURLRequest defines the payload for extracting a remote document.
type ExtractURLRequest struct {
	PDFURL          string `json:"pdf_url"         validate:"required,url"`
	ExtractionType  string `json:"extraction_type"`
	IncludeImages   bool   `json:"include_images"`
	IncludeMetadata bool   `json:"include_metadata"`
	FastMode        bool   `json:"fast_mode"`
	// UseCache defaults to true when the field is absent.
	UseCache *bool `json:"use_cache"`
}

// SubmitResponse acknowledges an accepted extraction task.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
}

// StatusResponse is the generic status/message payload used by the
// cache-clearing and health endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Service string `json:"service,omitempty"`
}

// NotFoundTaskResponse is returned when a polled task id is unknown.
type NotFoundTaskResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
