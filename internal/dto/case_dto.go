package dto

import (
	"encoding/json"

	"github.com/ohse-platform/incident-backend/internal/validation"
)

type CreateCaseRequest struct {
	FormData json.RawMessage `json:"form_data"`
}

type ResubmitCaseRequest struct {
	FormData json.RawMessage `json:"form_data"`
}

type RejectRequest struct {
	Comment string `json:"comment"`
}

type SubmitInvestigationRequest struct {
	FormData json.RawMessage `json:"form_data"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type AttachmentRequest struct {
	FileType   string `json:"file_type"`
	StorageRef string `json:"storage_ref"`
}

type CreateEnquiryRequest struct {
	FormData json.RawMessage `json:"form_data"`
}

type UpdateEnquiryStatusRequest struct {
	Status string `json:"status"`
}

// ValidationErrorResponse carries the complete set of field violations
// from one validation pass.
type ValidationErrorResponse struct {
	Error   bool                    `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields"`
}
