package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Enquiry statuses.
const (
	EnquiryPending        = "pending"
	EnquiryPendingSupport = "pending_support"
	EnquiryInProgress     = "in_progress"
	EnquiryClosed         = "closed"
)

// Enquiry is a lightweight support ticket, identified by a global 3-digit
// zero-padded sequence.
type Enquiry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnquiryID string         `gorm:"size:3;not null;uniqueIndex" json:"enquiry_id"`
	FormData  datatypes.JSON `gorm:"type:jsonb;not null" json:"form_data"`
	Status    string         `gorm:"size:50;not null;default:'pending'" json:"status"`

	RequestorID uuid.UUID `gorm:"type:uuid;not null;index" json:"requestor_id"`
	Requestor   User      `gorm:"foreignKey:RequestorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []EnquiryComment `gorm:"foreignKey:EnquiryID;references:ID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

type EnquiryComment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnquiryID uuid.UUID `gorm:"type:uuid;not null;index" json:"enquiry_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidEnquiryStatus reports whether s is one of the known enquiry statuses.
func ValidEnquiryStatus(s string) bool {
	switch s {
	case EnquiryPending, EnquiryPendingSupport, EnquiryInProgress, EnquiryClosed:
		return true
	}
	return false
}
