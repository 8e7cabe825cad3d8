// Package lifecycle implements the case state machine: a static table of
// role-gated edges over the (approver status, incident status) pair. The
// machine is pure; persistence and notifications happen in the services
// layer after a transition is accepted.
package lifecycle

import (
	"fmt"

	"github.com/ohse-platform/incident-backend/internal/roles"
)

type ApproverStatus string

const (
	ApproverPending  ApproverStatus = "pending"
	ApproverApproved ApproverStatus = "approved"
	ApproverRejected ApproverStatus = "rejected"
	ApproverClosed   ApproverStatus = "closed"
)

type IncidentStatus string

const (
	IncidentNone                        IncidentStatus = ""
	IncidentPendingInvestigationReport  IncidentStatus = "pending_investigation_report"
	IncidentUnderInvestigation          IncidentStatus = "under_investigation"
	IncidentReportPendingApproval       IncidentStatus = "report_pending_approval"
	IncidentCAPAInAction                IncidentStatus = "capa_in_action"
	IncidentClosed                      IncidentStatus = "closed"
	IncidentRejectedInvestigationReport IncidentStatus = "rejected_investigation_report"
)

// State is the case's combined lifecycle position.
type State struct {
	Approver ApproverStatus
	Incident IncidentStatus
}

// Initial is the state of every freshly created case.
var Initial = State{Approver: ApproverPending, Incident: IncidentNone}

func (s State) String() string {
	if s.Incident == IncidentNone {
		return fmt.Sprintf("(%s, -)", s.Approver)
	}
	return fmt.Sprintf("(%s, %s)", s.Approver, s.Incident)
}

type Action string

const (
	ActionApproveCase           Action = "approve_case"
	ActionRejectCase            Action = "reject_case"
	ActionResubmitCase          Action = "resubmit_case"
	ActionOpenInvestigation     Action = "open_investigation"
	ActionSubmitInvestigation   Action = "submit_investigation"
	ActionApproveInvestigation  Action = "approve_investigation"
	ActionRejectInvestigation   Action = "reject_investigation"
	ActionResubmitInvestigation Action = "resubmit_investigation"
	ActionCloseCase             Action = "close_case"
)

// Event names a committed lifecycle change for notification routing.
type Event string

const (
	EventCaseCreated              Event = "case_created"
	EventCaseApproved             Event = "case_approved"
	EventCaseRejected             Event = "case_rejected"
	EventCaseResubmitted          Event = "case_resubmitted"
	EventInvestigationOpened      Event = "investigation_opened"
	EventInvestigationSubmitted   Event = "investigation_submitted"
	EventInvestigationApproved    Event = "investigation_approved"
	EventInvestigationRejected    Event = "investigation_rejected"
	EventInvestigationResubmitted Event = "investigation_resubmitted"
	EventCaseClosed               Event = "case_closed"
)

// InvalidTransitionError reports a guard failure. The case state is left
// untouched whenever this is returned.
type InvalidTransitionError struct {
	Current State
	Action  Action
	Role    roles.Role
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: action %q by role %q not allowed from state %s",
		e.Action, e.Role, e.Current)
}

type edge struct {
	from   State
	action Action
}

type transition struct {
	to           State
	role         roles.Role
	event        Event
	needsComment bool
}

var table = map[edge]transition{
	{Initial, ActionApproveCase}: {
		to:    State{ApproverApproved, IncidentPendingInvestigationReport},
		role:  roles.Approver,
		event: EventCaseApproved,
	},
	{Initial, ActionRejectCase}: {
		to:           State{ApproverRejected, IncidentNone},
		role:         roles.Approver,
		event:        EventCaseRejected,
		needsComment: true,
	},
	{State{ApproverRejected, IncidentNone}, ActionResubmitCase}: {
		to:    Initial,
		role:  roles.Reporter,
		event: EventCaseResubmitted,
	},
	{State{ApproverApproved, IncidentPendingInvestigationReport}, ActionOpenInvestigation}: {
		to:    State{ApproverApproved, IncidentUnderInvestigation},
		role:  roles.Investigator,
		event: EventInvestigationOpened,
	},
	{State{ApproverApproved, IncidentUnderInvestigation}, ActionSubmitInvestigation}: {
		to:    State{ApproverApproved, IncidentReportPendingApproval},
		role:  roles.Investigator,
		event: EventInvestigationSubmitted,
	},
	{State{ApproverApproved, IncidentReportPendingApproval}, ActionApproveInvestigation}: {
		to:    State{ApproverApproved, IncidentCAPAInAction},
		role:  roles.GOHSEManager,
		event: EventInvestigationApproved,
	},
	{State{ApproverApproved, IncidentReportPendingApproval}, ActionRejectInvestigation}: {
		to:           State{ApproverApproved, IncidentRejectedInvestigationReport},
		role:         roles.GOHSEManager,
		event:        EventInvestigationRejected,
		needsComment: true,
	},
	{State{ApproverApproved, IncidentRejectedInvestigationReport}, ActionResubmitInvestigation}: {
		to:    State{ApproverApproved, IncidentReportPendingApproval},
		role:  roles.Investigator,
		event: EventInvestigationResubmitted,
	},
	{State{ApproverApproved, IncidentCAPAInAction}, ActionCloseCase}: {
		to:    State{ApproverClosed, IncidentClosed},
		role:  roles.GOHSEManager,
		event: EventCaseClosed,
	},
}

// Apply checks the guard for (current, action, role) and returns the next
// state and its event. Any combination outside the edge table fails with
// InvalidTransitionError and no partial effect.
func Apply(current State, action Action, role roles.Role) (State, Event, error) {
	t, ok := table[edge{current, action}]
	if !ok || t.role != role {
		return current, "", &InvalidTransitionError{Current: current, Action: action, Role: role}
	}
	return t.to, t.event, nil
}

// RequiresComment reports whether the action must carry a non-blank
// reviewer comment.
func RequiresComment(action Action) bool {
	switch action {
	case ActionRejectCase, ActionRejectInvestigation:
		return true
	}
	return false
}
