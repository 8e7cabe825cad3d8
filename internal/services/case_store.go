package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ohse-platform/incident-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// caseTx is the slice of one storage transaction the case unit of work
// runs against. The gorm implementation is the production path; tests
// substitute an in-memory fake.
type caseTx interface {
	LoadCase(trackingNo string) (*models.Case, error)
	CreateCase(c *models.Case) error
	// UpdateCaseGuarded persists the transitioned case only where the
	// stored version still equals prevVersion, returning how many rows
	// matched.
	UpdateCaseGuarded(c *models.Case, prevVersion uint) (int64, error)
	CreateCaseComment(comment *models.CaseComment) error
	CreateInvestigation(inv *models.Investigation) error
	CreateInvestigationComment(comment *models.InvestigationComment) error
	UpdateInvestigationForm(caseID uuid.UUID, formData datatypes.JSON) (int64, error)
	FindInvestigationID(caseID uuid.UUID) (uuid.UUID, error)
	NextCaseNumber(year int) (string, error)
}

// caseStore opens one transaction around fn; fn's effects commit together
// or not at all.
type caseStore interface {
	InTransaction(ctx context.Context, fn func(tx caseTx) error) error
}

type gormCaseStore struct {
	db        *gorm.DB
	allocator *TrackingAllocator
}

func (s *gormCaseStore) InTransaction(ctx context.Context, fn func(tx caseTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCaseTx{tx: tx, allocator: s.allocator})
	})
}

type gormCaseTx struct {
	tx        *gorm.DB
	allocator *TrackingAllocator
}

func (t *gormCaseTx) LoadCase(trackingNo string) (*models.Case, error) {
	var c models.Case
	if err := t.tx.Where("tracking_no = ?", trackingNo).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	return &c, nil
}

func (t *gormCaseTx) CreateCase(c *models.Case) error {
	return t.tx.Create(c).Error
}

func (t *gormCaseTx) UpdateCaseGuarded(c *models.Case, prevVersion uint) (int64, error) {
	result := t.tx.Model(&models.Case{}).
		Where("id = ? AND version = ?", c.ID, prevVersion).
		Updates(map[string]interface{}{
			"approver_status":   c.ApproverStatus,
			"incident_status":   c.IncidentStatus,
			"form_data":         c.FormData,
			"risk_tier":         c.RiskTier,
			"response_deadline": c.ResponseDeadline,
			"approver_id":       c.ApproverID,
			"version":           c.Version,
		})
	return result.RowsAffected, result.Error
}

func (t *gormCaseTx) CreateCaseComment(comment *models.CaseComment) error {
	return t.tx.Create(comment).Error
}

func (t *gormCaseTx) CreateInvestigation(inv *models.Investigation) error {
	return t.tx.Create(inv).Error
}

func (t *gormCaseTx) CreateInvestigationComment(comment *models.InvestigationComment) error {
	return t.tx.Create(comment).Error
}

func (t *gormCaseTx) UpdateInvestigationForm(caseID uuid.UUID, formData datatypes.JSON) (int64, error) {
	result := t.tx.Model(&models.Investigation{}).
		Where("case_id = ?", caseID).
		Update("form_data", formData)
	return result.RowsAffected, result.Error
}

func (t *gormCaseTx) FindInvestigationID(caseID uuid.UUID) (uuid.UUID, error) {
	var inv models.Investigation
	err := t.tx.Select("id").Where("case_id = ?", caseID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrInvestigationNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load investigation: %w", err)
	}
	return inv.ID, nil
}

func (t *gormCaseTx) NextCaseNumber(year int) (string, error) {
	return t.allocator.NextCaseNumber(t.tx, year)
}
