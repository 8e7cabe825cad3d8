package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ohse-platform/incident-backend/internal/models"
	"gorm.io/gorm"
)

// InvestigationService covers the investigation record itself: reads,
// append-only comments and attachment references. Lifecycle transitions
// touching investigations live on CaseService.
type InvestigationService struct {
	db *gorm.DB
}

func NewInvestigationService(db *gorm.DB) *InvestigationService {
	return &InvestigationService{db: db}
}

// GetByCase loads the investigation attached to a case tracking number.
func (s *InvestigationService) GetByCase(ctx context.Context, trackingNo string) (*models.Investigation, error) {
	var c models.Case
	if err := s.db.WithContext(ctx).Select("id").Where("tracking_no = ?", trackingNo).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case: %w", err)
	}

	var inv models.Investigation
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Attachments").
		Where("case_id = ?", c.ID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvestigationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load investigation: %w", err)
	}
	return &inv, nil
}

// AddComment appends a comment to an investigation. Comments are never
// updated or deleted.
func (s *InvestigationService) AddComment(ctx context.Context, author *models.User, investigationID uuid.UUID, text string) (*models.InvestigationComment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentRequired
	}

	var inv models.Investigation
	if err := s.db.WithContext(ctx).Select("id").First(&inv, "id = ?", investigationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestigationNotFound
		}
		return nil, fmt.Errorf("failed to load investigation: %w", err)
	}

	comment := models.InvestigationComment{
		InvestigationID: inv.ID,
		AuthorID:        author.ID,
		Text:            text,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}

// RegisterAttachment records an opaque storage reference against an
// investigation. The file itself lives in the external store.
func (s *InvestigationService) RegisterAttachment(ctx context.Context, investigationID uuid.UUID, fileType, storageRef string) (*models.InvestigationAttachment, error) {
	if fileType != models.FileTypeImage && fileType != models.FileTypeAttachment {
		return nil, fmt.Errorf("invalid file type %q", fileType)
	}
	if strings.TrimSpace(storageRef) == "" {
		return nil, errors.New("storage reference is required")
	}

	attachment := models.InvestigationAttachment{
		InvestigationID: investigationID,
		FileType:        fileType,
		StorageRef:      storageRef,
		IsActive:        true,
	}
	if err := s.db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return nil, fmt.Errorf("failed to register attachment: %w", err)
	}
	return &attachment, nil
}
