package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment file types.
const (
	FileTypeImage      = "image"
	FileTypeAttachment = "attachment"
)

// CaseAttachment is an opaque reference to an uploaded file; the core never
// inspects content, it only records presence.
type CaseAttachment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"attachment_id"`
	CaseID     uuid.UUID `gorm:"type:uuid;not null;index" json:"case_id"`
	FileType   string    `gorm:"size:20" json:"file_type"`
	StorageRef string    `gorm:"size:512;not null" json:"storage_ref"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

type InvestigationAttachment struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"attachment_id"`
	InvestigationID uuid.UUID `gorm:"type:uuid;not null;index" json:"investigation_id"`
	FileType        string    `gorm:"size:20" json:"file_type"`
	StorageRef      string    `gorm:"size:512;not null" json:"storage_ref"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	UploadedAt      time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
