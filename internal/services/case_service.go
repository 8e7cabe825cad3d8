package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ohse-platform/incident-backend/internal/lifecycle"
	"github.com/ohse-platform/incident-backend/internal/models"
	"github.com/ohse-platform/incident-backend/internal/notify"
	"github.com/ohse-platform/incident-backend/internal/risk"
	"github.com/ohse-platform/incident-backend/internal/roles"
	"github.com/ohse-platform/incident-backend/internal/schema"
	"github.com/ohse-platform/incident-backend/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxAllocAttempts = 3
	allocBackoff     = 50 * time.Millisecond
	dispatchTimeout  = 30 * time.Second
)

// Dispatcher is the slice of notify.Dispatcher the case service needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, event lifecycle.Event, c *models.Case) error
}

// CaseService runs the case unit of work: validate, classify, apply the
// lifecycle transition, allocate an identifier on first creation, persist,
// then dispatch the notification. Notification failures never roll back a
// committed transition.
type CaseService struct {
	db         *gorm.DB
	store      caseStore
	validator  *validation.Validator
	dispatcher Dispatcher
}

func NewCaseService(db *gorm.DB, validator *validation.Validator, allocator *TrackingAllocator, dispatcher Dispatcher) *CaseService {
	return &CaseService{
		db:         db,
		store:      &gormCaseStore{db: db, allocator: allocator},
		validator:  validator,
		dispatcher: dispatcher,
	}
}

// Create validates a reporting form, classifies its risk and persists a
// new case with a freshly allocated tracking number.
func (s *CaseService) Create(ctx context.Context, reporter *models.User, formData []byte) (*models.Case, error) {
	if err := s.validator.Validate(schema.Reporting, formData); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &models.Case{
		ApproverStatus: string(lifecycle.ApproverPending),
		IncidentStatus: string(lifecycle.IncidentNone),
		ReporterID:     reporter.ID,
		Version:        1,
		IsActive:       true,
	}
	reclassify(c, formData, now)

	if err := s.createWithAllocation(ctx, now.Year(), c); err != nil {
		return nil, err
	}

	s.dispatchAsync(lifecycle.EventCaseCreated, c)
	return c, nil
}

// createWithAllocation retries the allocate-and-insert transaction on
// duplicate-identifier conflicts, then surfaces exhaustion.
func (s *CaseService) createWithAllocation(ctx context.Context, year int, c *models.Case) error {
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		err := s.store.InTransaction(ctx, func(tx caseTx) error {
			trackingNo, err := tx.NextCaseNumber(year)
			if err != nil {
				return err
			}
			c.TrackingNo = trackingNo
			return tx.CreateCase(c)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create case: %w", err)
		}
		slog.Warn("tracking number allocation conflict, retrying",
			"attempt", attempt, "error", ErrAllocationConflict)
		if attempt < maxAllocAttempts {
			time.Sleep(time.Duration(attempt) * allocBackoff)
		}
	}
	return ErrAllocationExhausted
}

// Get loads a case by tracking number.
func (s *CaseService) Get(ctx context.Context, trackingNo string) (*models.Case, error) {
	var c models.Case
	err := s.db.WithContext(ctx).
		Preload("Comments").Preload("Attachments").
		Where("tracking_no = ?", trackingNo).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	return &c, nil
}

// CaseFilter narrows List results.
type CaseFilter struct {
	ApproverStatus string
	IncidentStatus string
	RiskTier       string
	ReporterID     string
}

// List returns cases ordered by tracking number ascending.
func (s *CaseService) List(ctx context.Context, filter CaseFilter, limit, offset int) ([]models.Case, int64, error) {
	var cases []models.Case
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Case{})
	if filter.ApproverStatus != "" {
		query = query.Where("approver_status = ?", filter.ApproverStatus)
	}
	if filter.IncidentStatus != "" {
		query = query.Where("incident_status = ?", filter.IncidentStatus)
	}
	if filter.RiskTier != "" {
		query = query.Where("risk_tier = ?", filter.RiskTier)
	}
	if filter.ReporterID != "" {
		query = query.Where("reporter_id = ?", filter.ReporterID)
	}
	query.Count(&total)

	if err := query.Order("tracking_no ASC").Limit(limit).Offset(offset).Find(&cases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, total, nil
}

// Approve moves a pending case into investigation and records the caller
// as the case approver.
func (s *CaseService) Approve(ctx context.Context, caller *models.User, trackingNo string) (*models.Case, error) {
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionApproveCase, "", nil,
		func(tx caseTx, c *models.Case) error {
			id := caller.ID
			c.ApproverID = &id
			return nil
		})
}

// Reject sends a pending case back to its reporter. The comment is
// mandatory and recorded append-only on the case.
func (s *CaseService) Reject(ctx context.Context, caller *models.User, trackingNo, comment string) (*models.Case, error) {
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionRejectCase, comment, nil,
		func(tx caseTx, c *models.Case) error {
			return tx.CreateCaseComment(&models.CaseComment{
				CaseID:   c.ID,
				AuthorID: caller.ID,
				Text:     comment,
			})
		})
}

// Resubmit revalidates the corrected form, recomputes the risk tier and
// returns a rejected case to the approval queue. Only the owning reporter
// may resubmit.
func (s *CaseService) Resubmit(ctx context.Context, caller *models.User, trackingNo string, formData []byte) (*models.Case, error) {
	if err := s.validator.Validate(schema.Reporting, formData); err != nil {
		return nil, err
	}
	guard := func(c *models.Case) error {
		if c.ReporterID != caller.ID {
			return ErrNotOwner
		}
		return nil
	}
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionResubmitCase, "", guard,
		func(tx caseTx, c *models.Case) error {
			reclassify(c, formData, time.Now())
			return nil
		})
}

// OpenInvestigation marks a case as under investigation.
func (s *CaseService) OpenInvestigation(ctx context.Context, caller *models.User, trackingNo string) (*models.Case, error) {
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionOpenInvestigation, "", nil, nil)
}

// SubmitInvestigation validates the investigation form, stores the
// investigation record and moves the case to report-pending-approval.
func (s *CaseService) SubmitInvestigation(ctx context.Context, caller *models.User, trackingNo string, formData []byte) (*models.Case, error) {
	if err := s.validator.Validate(schema.Investigation, formData); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionSubmitInvestigation, "", nil,
		func(tx caseTx, c *models.Case) error {
			return tx.CreateInvestigation(&models.Investigation{
				CaseID:         c.ID,
				FormData:       datatypes.JSON(formData),
				InvestigatorID: caller.ID,
			})
		})
}

// ApproveInvestigation accepts the investigation report and starts the
// corrective-action phase.
func (s *CaseService) ApproveInvestigation(ctx context.Context, caller *models.User, trackingNo string) (*models.Case, error) {
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionApproveInvestigation, "", nil, nil)
}

// RejectInvestigation sends the report back to the investigator with a
// mandatory comment, recorded append-only on the investigation.
func (s *CaseService) RejectInvestigation(ctx context.Context, caller *models.User, trackingNo, comment string) (*models.Case, error) {
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionRejectInvestigation, comment, nil,
		func(tx caseTx, c *models.Case) error {
			invID, err := tx.FindInvestigationID(c.ID)
			if err != nil {
				return err
			}
			return tx.CreateInvestigationComment(&models.InvestigationComment{
				InvestigationID: invID,
				AuthorID:        caller.ID,
				Text:            comment,
			})
		})
}

// ResubmitInvestigation revalidates a corrected report and returns it to
// the manager's queue.
func (s *CaseService) ResubmitInvestigation(ctx context.Context, caller *models.User, trackingNo string, formData []byte) (*models.Case, error) {
	if err := s.validator.Validate(schema.Investigation, formData); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionResubmitInvestigation, "", nil,
		func(tx caseTx, c *models.Case) error {
			n, err := tx.UpdateInvestigationForm(c.ID, datatypes.JSON(formData))
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrInvestigationNotFound
			}
			return nil
		})
}

// Close finishes a case once corrective actions are done.
func (s *CaseService) Close(ctx context.Context, caller *models.User, trackingNo string) (*models.Case, error) {
	return s.transition(ctx, caller, trackingNo, lifecycle.ActionCloseCase, "", nil, nil)
}

// transition runs one guarded state change as a single transaction: load,
// check the edge table, apply side effects, then persist under an
// optimistic version check so two concurrent transitions can never both
// succeed from the same stale read.
func (s *CaseService) transition(
	ctx context.Context,
	caller *models.User,
	trackingNo string,
	action lifecycle.Action,
	comment string,
	guard func(c *models.Case) error,
	mutate func(tx caseTx, c *models.Case) error,
) (*models.Case, error) {
	role, err := roles.Parse(caller.Role)
	if err != nil {
		return nil, err
	}
	if lifecycle.RequiresComment(action) && strings.TrimSpace(comment) == "" {
		return nil, ErrCommentRequired
	}

	var c models.Case
	var event lifecycle.Event

	err = s.store.InTransaction(ctx, func(tx caseTx) error {
		loaded, err := tx.LoadCase(trackingNo)
		if err != nil {
			return err
		}
		c = *loaded

		current := lifecycle.State{
			Approver: lifecycle.ApproverStatus(c.ApproverStatus),
			Incident: lifecycle.IncidentStatus(c.IncidentStatus),
		}
		next, ev, err := lifecycle.Apply(current, action, role)
		if err != nil {
			return err
		}
		event = ev

		if guard != nil {
			if err := guard(&c); err != nil {
				return err
			}
		}
		if mutate != nil {
			if err := mutate(tx, &c); err != nil {
				return err
			}
		}

		prevVersion := c.Version
		c.ApproverStatus = string(next.Approver)
		c.IncidentStatus = string(next.Incident)
		c.Version = prevVersion + 1

		n, err := tx.UpdateCaseGuarded(&c, prevVersion)
		if err != nil {
			return fmt.Errorf("failed to persist transition: %w", err)
		}
		if n == 0 {
			return ErrVersionConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchAsync(event, &c)
	return &c, nil
}

// dispatchAsync sends the event notification off the critical path. It is
// called only after the transition is durably committed, which keeps
// notification order consistent with state order.
func (s *CaseService) dispatchAsync(event lifecycle.Event, c *models.Case) {
	snapshot := *c
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := s.dispatcher.Dispatch(ctx, event, &snapshot); err != nil {
			if errors.Is(err, notify.ErrNoRecipient) {
				slog.Warn("notification skipped",
					"tracking_no", snapshot.TrackingNo, "event", string(event), "error", err)
				return
			}
			slog.Error("notification dispatch failed",
				"tracking_no", snapshot.TrackingNo, "event", string(event), "error", err)
		}
	}()
}

// RegisterAttachment records an opaque storage reference against a case.
// The file itself lives in the external store; the core only tracks
// presence.
func (s *CaseService) RegisterAttachment(ctx context.Context, trackingNo, fileType, storageRef string) (*models.CaseAttachment, error) {
	if fileType != models.FileTypeImage && fileType != models.FileTypeAttachment {
		return nil, fmt.Errorf("invalid file type %q", fileType)
	}
	if strings.TrimSpace(storageRef) == "" {
		return nil, errors.New("storage reference is required")
	}

	c, err := s.Get(ctx, trackingNo)
	if err != nil {
		return nil, err
	}

	attachment := models.CaseAttachment{
		CaseID:     c.ID,
		FileType:   fileType,
		StorageRef: storageRef,
		IsActive:   true,
	}
	if err := s.db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return nil, fmt.Errorf("failed to register attachment: %w", err)
	}
	return &attachment, nil
}

// reclassify replaces the case form and recomputes the derived risk
// fields from its incident category.
func reclassify(c *models.Case, formData []byte, now time.Time) {
	tier := risk.Classify(incidentCategory(formData))
	c.FormData = datatypes.JSON(formData)
	c.RiskTier = tier.String()
	c.ResponseDeadline = tier.ResponseDeadline(now)
}

// incidentCategory extracts the category label the risk classifier keys
// on. Missing or malformed forms classify as unknown downstream.
func incidentCategory(formData []byte) string {
	var doc struct {
		Incidents struct {
			Category string `json:"incident_category"`
		} `json:"incidents"`
	}
	if err := json.Unmarshal(formData, &doc); err != nil {
		return ""
	}
	return doc.Incidents.Category
}
