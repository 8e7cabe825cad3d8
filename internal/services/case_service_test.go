package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohse-platform/incident-backend/internal/lifecycle"
	"github.com/ohse-platform/incident-backend/internal/models"
	"github.com/ohse-platform/incident-backend/internal/schema"
	"github.com/ohse-platform/incident-backend/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fakeCaseStore is an in-memory caseStore. Optimistic-lock semantics
// mirror the guarded UPDATE: a version mismatch matches zero rows.
type fakeCaseStore struct {
	mu             sync.Mutex
	cases          map[string]*models.Case
	investigations map[uuid.UUID]*models.Investigation
	caseComments   []models.CaseComment
	invComments    []models.InvestigationComment
	seq            int
	createErrs     []error
	staleOnUpdate  bool
}

func newFakeCaseStore() *fakeCaseStore {
	return &fakeCaseStore{
		cases:          make(map[string]*models.Case),
		investigations: make(map[uuid.UUID]*models.Investigation),
	}
}

func (f *fakeCaseStore) InTransaction(_ context.Context, fn func(tx caseTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(&fakeCaseTx{store: f})
}

func (f *fakeCaseStore) stored(trackingNo string) *models.Case {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cases[trackingNo]
}

type fakeCaseTx struct {
	store *fakeCaseStore
}

func (t *fakeCaseTx) LoadCase(trackingNo string) (*models.Case, error) {
	c, ok := t.store.cases[trackingNo]
	if !ok {
		return nil, ErrCaseNotFound
	}
	loaded := *c
	return &loaded, nil
}

func (t *fakeCaseTx) CreateCase(c *models.Case) error {
	if len(t.store.createErrs) > 0 {
		err := t.store.createErrs[0]
		t.store.createErrs = t.store.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stored := *c
	t.store.cases[c.TrackingNo] = &stored
	return nil
}

func (t *fakeCaseTx) UpdateCaseGuarded(c *models.Case, prevVersion uint) (int64, error) {
	if t.store.staleOnUpdate {
		return 0, nil
	}
	stored, ok := t.store.cases[c.TrackingNo]
	if !ok || stored.Version != prevVersion {
		return 0, nil
	}
	updated := *c
	t.store.cases[c.TrackingNo] = &updated
	return 1, nil
}

func (t *fakeCaseTx) CreateCaseComment(comment *models.CaseComment) error {
	t.store.caseComments = append(t.store.caseComments, *comment)
	return nil
}

func (t *fakeCaseTx) CreateInvestigation(inv *models.Investigation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	stored := *inv
	t.store.investigations[inv.CaseID] = &stored
	return nil
}

func (t *fakeCaseTx) CreateInvestigationComment(comment *models.InvestigationComment) error {
	t.store.invComments = append(t.store.invComments, *comment)
	return nil
}

func (t *fakeCaseTx) UpdateInvestigationForm(caseID uuid.UUID, formData datatypes.JSON) (int64, error) {
	inv, ok := t.store.investigations[caseID]
	if !ok {
		return 0, nil
	}
	inv.FormData = formData
	return 1, nil
}

func (t *fakeCaseTx) FindInvestigationID(caseID uuid.UUID) (uuid.UUID, error) {
	inv, ok := t.store.investigations[caseID]
	if !ok {
		return uuid.Nil, ErrInvestigationNotFound
	}
	return inv.ID, nil
}

func (t *fakeCaseTx) NextCaseNumber(year int) (string, error) {
	t.store.seq++
	return fmt.Sprintf("%02d%03d", year%100, t.store.seq), nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events []lifecycle.Event
}

func (d *fakeDispatcher) Dispatch(_ context.Context, event lifecycle.Event, _ *models.Case) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *fakeDispatcher) seen() []lifecycle.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]lifecycle.Event, len(d.events))
	copy(out, d.events)
	return out
}

func newTestCaseService(t *testing.T, store *fakeCaseStore, dispatcher *fakeDispatcher) *CaseService {
	t.Helper()
	registry, err := schema.Load()
	require.NoError(t, err)
	return &CaseService{store: store, validator: validation.New(registry), dispatcher: dispatcher}
}

func reportingForm(t *testing.T, category string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"incidents": map[string]any{
			"business_unit":     "Logistics",
			"site_name":         "Warehouse 3",
			"date_of_incident":  "2025-03-03",
			"time_of_incident":  "14:20",
			"location":          "Loading bay",
			"description":       "Pallet fell from forklift",
			"incident_type":     "Health & Safety",
			"incident_category": category,
			"nature_of_injury":  "Bruise",
			"injured_body_part": "Hand",
		},
		"injuredPersons": map[string]any{
			"name":                   "Daniel Wong",
			"designation":            "Warehouse Assistant",
			"department":             "Logistics",
			"age":                    34,
			"immediate_supervisor":   "Carol Ng",
			"employment_type":        "Employee",
			"period_work_in_company": "1-3 years",
			"employment_start_date":  "2023-06-01",
			"engaged_in_performing_task_related_to_incident": "Yes",
			"period_task_related_to_incident":                "1-3 years",
			"shift_schedule":                                 false,
		},
		"medicalInfo": map[string]any{
			"hospital":                 "City General",
			"med_cert_start_date":      "2025-03-03",
			"med_cert_end_date":        "2025-03-05",
			"med_cert_days":            2,
			"ward_admitted_start_date": "2025-03-03",
			"ward_admitted_end_date":   "2025-03-04",
			"ward_admitted_days":       1,
		},
		"witnessInfo": map[string]any{
			"name":              "Carol Ng",
			"designation":       "Supervisor",
			"witness_statement": "Saw the pallet slide off as the forklift turned",
		},
		"email": map[string]any{
			"email": "daniel.wong@example.com",
		},
	})
	require.NoError(t, err)
	return raw
}

func seedCase(store *fakeCaseStore, c *models.Case) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	store.cases[c.TrackingNo] = c
}

func waitForEvents(t *testing.T, d *fakeDispatcher, want ...lifecycle.Event) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(d.seen()) == len(want)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, want, d.seen())
}

func TestCreateAllocatesClassifiesAndDispatches(t *testing.T) {
	store := newFakeCaseStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestCaseService(t, store, dispatcher)
	reporter := &models.User{ID: uuid.New(), Role: "reporter"}

	c, err := svc.Create(context.Background(), reporter, reportingForm(t, "Fatal"))
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("%02d001", time.Now().Year()%100), c.TrackingNo)
	assert.Equal(t, "critical", c.RiskTier)
	require.NotNil(t, c.ResponseDeadline)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), *c.ResponseDeadline, time.Minute)
	assert.Equal(t, string(lifecycle.ApproverPending), c.ApproverStatus)
	assert.Equal(t, string(lifecycle.IncidentNone), c.IncidentStatus)
	assert.Equal(t, uint(1), c.Version)
	assert.Equal(t, reporter.ID, c.ReporterID)
	require.NotNil(t, store.stored(c.TrackingNo))

	waitForEvents(t, dispatcher, lifecycle.EventCaseCreated)
}

func TestCreateRetriesOnDuplicateTrackingNumber(t *testing.T) {
	store := newFakeCaseStore()
	store.createErrs = []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey}
	svc := newTestCaseService(t, store, &fakeDispatcher{})
	reporter := &models.User{ID: uuid.New(), Role: "reporter"}

	c, err := svc.Create(context.Background(), reporter, reportingForm(t, "First aid"))
	require.NoError(t, err)

	// Two conflicts burn two sequence numbers before the insert lands.
	assert.Equal(t, fmt.Sprintf("%02d003", time.Now().Year()%100), c.TrackingNo)
}

func TestCreateAllocationExhausted(t *testing.T) {
	store := newFakeCaseStore()
	store.createErrs = []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey}
	dispatcher := &fakeDispatcher{}
	svc := newTestCaseService(t, store, dispatcher)
	reporter := &models.User{ID: uuid.New(), Role: "reporter"}

	start := time.Now()
	_, err := svc.Create(context.Background(), reporter, reportingForm(t, "First aid"))
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Empty(t, dispatcher.seen())

	// Backoff runs between attempts only, so exhaustion pays two sleeps
	// (50ms + 100ms), not three.
	assert.Less(t, time.Since(start), 280*time.Millisecond)
}

func TestResubmitRecomputesRisk(t *testing.T) {
	store := newFakeCaseStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestCaseService(t, store, dispatcher)
	reporter := &models.User{ID: uuid.New(), Role: "reporter"}

	seedCase(store, &models.Case{
		TrackingNo:     "25007",
		FormData:       datatypes.JSON(reportingForm(t, "First aid")),
		RiskTier:       "low",
		ApproverStatus: string(lifecycle.ApproverRejected),
		IncidentStatus: string(lifecycle.IncidentNone),
		ReporterID:     reporter.ID,
		Version:        2,
		IsActive:       true,
	})

	intruder := &models.User{ID: uuid.New(), Role: "reporter"}
	_, err := svc.Resubmit(context.Background(), intruder, "25007", reportingForm(t, "Fatal"))
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, uint(2), store.stored("25007").Version)

	c, err := svc.Resubmit(context.Background(), reporter, "25007", reportingForm(t, "Fatal"))
	require.NoError(t, err)

	assert.Equal(t, "critical", c.RiskTier)
	require.NotNil(t, c.ResponseDeadline)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), *c.ResponseDeadline, time.Minute)
	assert.Equal(t, string(lifecycle.ApproverPending), c.ApproverStatus)
	assert.Equal(t, uint(3), c.Version)
	assert.Equal(t, "critical", store.stored("25007").RiskTier)

	waitForEvents(t, dispatcher, lifecycle.EventCaseResubmitted)
}

func TestTransitionVersionConflict(t *testing.T) {
	store := newFakeCaseStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestCaseService(t, store, dispatcher)

	seedCase(store, &models.Case{
		TrackingNo:     "25004",
		FormData:       datatypes.JSON(reportingForm(t, "First aid")),
		RiskTier:       "low",
		ApproverStatus: string(lifecycle.ApproverPending),
		IncidentStatus: string(lifecycle.IncidentNone),
		ReporterID:     uuid.New(),
		Version:        1,
		IsActive:       true,
	})
	store.staleOnUpdate = true

	approver := &models.User{ID: uuid.New(), Role: "approver"}
	_, err := svc.Approve(context.Background(), approver, "25004")
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Empty(t, dispatcher.seen())
}

func TestRejectPersistsCommentAndDispatches(t *testing.T) {
	store := newFakeCaseStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestCaseService(t, store, dispatcher)
	approver := &models.User{ID: uuid.New(), Role: "approver"}

	seedCase(store, &models.Case{
		TrackingNo:     "25002",
		FormData:       datatypes.JSON(reportingForm(t, "First aid")),
		RiskTier:       "low",
		ApproverStatus: string(lifecycle.ApproverPending),
		IncidentStatus: string(lifecycle.IncidentNone),
		ReporterID:     uuid.New(),
		Version:        1,
		IsActive:       true,
	})

	_, err := svc.Reject(context.Background(), approver, "25002", "  ")
	assert.ErrorIs(t, err, ErrCommentRequired)

	c, err := svc.Reject(context.Background(), approver, "25002", "Dates do not match the witness statement")
	require.NoError(t, err)

	assert.Equal(t, string(lifecycle.ApproverRejected), c.ApproverStatus)
	require.Len(t, store.caseComments, 1)
	assert.Equal(t, c.ID, store.caseComments[0].CaseID)
	assert.Equal(t, approver.ID, store.caseComments[0].AuthorID)
	assert.Equal(t, "Dates do not match the witness statement", store.caseComments[0].Text)

	waitForEvents(t, dispatcher, lifecycle.EventCaseRejected)
}
