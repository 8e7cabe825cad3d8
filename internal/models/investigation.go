package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Investigation is the zero-or-one investigation record attached to an
// approved case. Deleting the case deletes the investigation.
type Investigation struct {
	ID       uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"investigation_id"`
	CaseID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	Case     Case           `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"-"`
	FormData datatypes.JSON `gorm:"type:jsonb;not null" json:"form_data"`

	InvestigatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"investigator_id"`
	Investigator   User      `gorm:"foreignKey:InvestigatorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachments []InvestigationAttachment `gorm:"foreignKey:InvestigationID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Comments    []InvestigationComment    `gorm:"foreignKey:InvestigationID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// InvestigationComment is append-only; manager rejections land here.
type InvestigationComment struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvestigationID uuid.UUID `gorm:"type:uuid;not null;index" json:"investigation_id"`
	AuthorID        uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author          User      `gorm:"foreignKey:AuthorID" json:"-"`
	Text            string    `gorm:"type:text;not null" json:"text"`
	CreatedAt       time.Time `json:"created_at"`
}
