package dto

import "syllabye/internal/model"

// UploadSyllabusResponseDTO is the answer of POST /api/syllabi/upload.
// On success Data is set; on failure Status and ErrorText are.
type UploadSyllabusResponseDTO struct {
	Success   bool                `json:"success"`
	Data      *model.UploadTicket `json:"data,omitempty"`
	Status    int                 `json:"status,omitempty"`
	ErrorText string              `json:"errorText,omitempty"`
}
