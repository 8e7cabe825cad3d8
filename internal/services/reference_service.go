package services

import (
	"context"
	"fmt"

	"github.com/ohse-platform/incident-backend/internal/models"
	"gorm.io/gorm"
)

// ReferenceService serves the read-only rosters and content pages: OSH
// coordinators, floor marshalls, first aiders, news, FAQs and user guides.
type ReferenceService struct {
	db *gorm.DB
}

func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

func (s *ReferenceService) Coordinators(ctx context.Context) ([]models.OSHCoordinator, error) {
	var rows []models.OSHCoordinator
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list coordinators: %w", err)
	}
	return rows, nil
}

func (s *ReferenceService) FloorMarshalls(ctx context.Context) ([]models.FloorMarshall, error) {
	var rows []models.FloorMarshall
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list floor marshalls: %w", err)
	}
	return rows, nil
}

func (s *ReferenceService) FirstAiders(ctx context.Context) ([]models.FirstAider, error) {
	var rows []models.FirstAider
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list first aiders: %w", err)
	}
	return rows, nil
}

func (s *ReferenceService) News(ctx context.Context) ([]models.News, error) {
	var rows []models.News
	if err := s.db.WithContext(ctx).Where("is_active = true").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return rows, nil
}

func (s *ReferenceService) FAQs(ctx context.Context) ([]models.FAQ, error) {
	var rows []models.FAQ
	if err := s.db.WithContext(ctx).Where("is_active = true").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list FAQs: %w", err)
	}
	return rows, nil
}

func (s *ReferenceService) UserGuides(ctx context.Context, role string) ([]models.UserGuide, error) {
	query := s.db.WithContext(ctx).Model(&models.UserGuide{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var rows []models.UserGuide
	if err := query.Order("role ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list user guides: %w", err)
	}
	return rows, nil
}
