package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ohse-platform/incident-backend/internal/models"
	"github.com/ohse-platform/incident-backend/internal/schema"
	"github.com/ohse-platform/incident-backend/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnquiryService handles support enquiries: lightweight tickets with a
// globally sequenced 3-digit identifier.
type EnquiryService struct {
	db        *gorm.DB
	validator *validation.Validator
	allocator *TrackingAllocator
}

func NewEnquiryService(db *gorm.DB, validator *validation.Validator, allocator *TrackingAllocator) *EnquiryService {
	return &EnquiryService{db: db, validator: validator, allocator: allocator}
}

// Create validates the enquiry form and persists a new ticket with the
// next global enquiry identifier.
func (s *EnquiryService) Create(ctx context.Context, requestor *models.User, formData []byte) (*models.Enquiry, error) {
	if err := s.validator.Validate(schema.Enquiry, formData); err != nil {
		return nil, err
	}

	enquiry := &models.Enquiry{
		FormData:    datatypes.JSON(formData),
		Status:      models.EnquiryPending,
		RequestorID: requestor.ID,
	}

	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			enquiryID, err := s.allocator.NextEnquiryNumber(tx)
			if err != nil {
				return err
			}
			enquiry.EnquiryID = enquiryID
			return tx.Create(enquiry).Error
		})
		if err == nil {
			return enquiry, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create enquiry: %w", err)
		}
		slog.Warn("enquiry id allocation conflict, retrying",
			"attempt", attempt, "error", ErrAllocationConflict)
		if attempt < maxAllocAttempts {
			time.Sleep(time.Duration(attempt) * allocBackoff)
		}
	}
	return nil, ErrAllocationExhausted
}

// Get loads one enquiry by its public identifier.
func (s *EnquiryService) Get(ctx context.Context, enquiryID string) (*models.Enquiry, error) {
	var enquiry models.Enquiry
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("enquiry_id = ?", enquiryID).
		First(&enquiry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEnquiryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load enquiry: %w", err)
	}
	return &enquiry, nil
}

// List returns enquiries ordered by identifier ascending, optionally
// filtered by status.
func (s *EnquiryService) List(ctx context.Context, status string, limit, offset int) ([]models.Enquiry, int64, error) {
	var enquiries []models.Enquiry
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Enquiry{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("enquiry_id ASC").Limit(limit).Offset(offset).Find(&enquiries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list enquiries: %w", err)
	}
	return enquiries, total, nil
}

// UpdateStatus moves an enquiry between support statuses.
func (s *EnquiryService) UpdateStatus(ctx context.Context, enquiryID, status string) (*models.Enquiry, error) {
	if !models.ValidEnquiryStatus(status) {
		return nil, ErrInvalidStatus
	}

	result := s.db.WithContext(ctx).Model(&models.Enquiry{}).
		Where("enquiry_id = ?", enquiryID).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrEnquiryNotFound
	}
	return s.Get(ctx, enquiryID)
}

// AddComment appends a comment to an enquiry.
func (s *EnquiryService) AddComment(ctx context.Context, author *models.User, enquiryID, text string) (*models.EnquiryComment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentRequired
	}

	enquiry, err := s.Get(ctx, enquiryID)
	if err != nil {
		return nil, err
	}

	comment := models.EnquiryComment{
		EnquiryID: enquiry.ID,
		AuthorID:  author.ID,
		Text:      text,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}
