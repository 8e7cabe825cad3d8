package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Case is one reported incident tracked end-to-end through approval,
// investigation and closure. TrackingNo is the external-facing YYnnn
// identifier and is immutable once assigned.
type Case struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrackingNo     string         `gorm:"size:5;not null;uniqueIndex" json:"tracking_no"`
	FormData       datatypes.JSON `gorm:"type:jsonb;not null" json:"form_data"`
	RiskTier       string         `gorm:"size:20;not null;default:'unknown'" json:"risk_tier"`
	IncidentStatus string         `gorm:"size:50" json:"incident_status"`
	ApproverStatus string         `gorm:"size:50;not null;default:'pending'" json:"approver_status"`

	ReporterID uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Reporter   User       `gorm:"foreignKey:ReporterID" json:"-"`
	ApproverID *uuid.UUID `gorm:"type:uuid;index" json:"approver_id,omitempty"`
	Approver   *User      `gorm:"foreignKey:ApproverID" json:"-"`

	// Advisory SLA window derived from risk tier at creation time.
	ResponseDeadline *time.Time `json:"response_deadline,omitempty"`

	// Optimistic lock; every successful transition bumps it.
	Version  uint `gorm:"not null;default:1" json:"version"`
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachments []CaseAttachment `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Comments    []CaseComment    `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// VictimName pulls the injured person's name out of the reporting form for
// notification rendering. Falls back to "Victim" when the form has none.
func (c *Case) VictimName() string {
	var doc struct {
		InjuredPersons struct {
			Name string `json:"name"`
		} `json:"injuredPersons"`
	}
	if err := json.Unmarshal(c.FormData, &doc); err != nil || doc.InjuredPersons.Name == "" {
		return "Victim"
	}
	return doc.InjuredPersons.Name
}

// CaseComment is an append-only remark on a case, written on approver
// rejection and other review actions. Comments are never edited or removed.
type CaseComment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"case_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
