package handler

import "guardian/internal/validation"

// UploadResponse is the HTTP response for POST /upload.
type UploadResponse struct {
	Status string                        `json:"status"`
	Data   []validation.ValidationResult `json:"data"`
}

// NewUploadResponse wraps results in the success envelope.
func NewUploadResponse(results []validation.ValidationResult) *UploadResponse {
	if results == nil {
		results = []validation.ValidationResult{}
	}
	return &UploadResponse{Status: "success", Data: results}
}
