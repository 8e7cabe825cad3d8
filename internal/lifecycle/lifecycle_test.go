package lifecycle

import (
	"testing"

	"github.com/ohse-platform/incident-backend/internal/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyHappyPath(t *testing.T) {
	state := Initial

	steps := []struct {
		action Action
		role   roles.Role
		want   State
		event  Event
	}{
		{ActionApproveCase, roles.Approver, State{ApproverApproved, IncidentPendingInvestigationReport}, EventCaseApproved},
		{ActionOpenInvestigation, roles.Investigator, State{ApproverApproved, IncidentUnderInvestigation}, EventInvestigationOpened},
		{ActionSubmitInvestigation, roles.Investigator, State{ApproverApproved, IncidentReportPendingApproval}, EventInvestigationSubmitted},
		{ActionApproveInvestigation, roles.GOHSEManager, State{ApproverApproved, IncidentCAPAInAction}, EventInvestigationApproved},
		{ActionCloseCase, roles.GOHSEManager, State{ApproverClosed, IncidentClosed}, EventCaseClosed},
	}

	for _, step := range steps {
		next, event, err := Apply(state, step.action, step.role)
		require.NoError(t, err, "action %s from %s", step.action, state)
		assert.Equal(t, step.want, next)
		assert.Equal(t, step.event, event)
		state = next
	}
}

func TestApplyRejectionLoops(t *testing.T) {
	t.Run("case rejection and resubmission", func(t *testing.T) {
		rejected, event, err := Apply(Initial, ActionRejectCase, roles.Approver)
		require.NoError(t, err)
		assert.Equal(t, State{ApproverRejected, IncidentNone}, rejected)
		assert.Equal(t, EventCaseRejected, event)

		back, event, err := Apply(rejected, ActionResubmitCase, roles.Reporter)
		require.NoError(t, err)
		assert.Equal(t, Initial, back)
		assert.Equal(t, EventCaseResubmitted, event)
	})

	t.Run("investigation rejection and resubmission", func(t *testing.T) {
		pending := State{ApproverApproved, IncidentReportPendingApproval}

		rejected, event, err := Apply(pending, ActionRejectInvestigation, roles.GOHSEManager)
		require.NoError(t, err)
		assert.Equal(t, State{ApproverApproved, IncidentRejectedInvestigationReport}, rejected)
		assert.Equal(t, EventInvestigationRejected, event)

		back, event, err := Apply(rejected, ActionResubmitInvestigation, roles.Investigator)
		require.NoError(t, err)
		assert.Equal(t, pending, back)
		assert.Equal(t, EventInvestigationResubmitted, event)
	})
}

func TestApplyRejectsWrongRole(t *testing.T) {
	cases := []struct {
		name   string
		from   State
		action Action
		role   roles.Role
	}{
		{"reporter cannot approve a case", Initial, ActionApproveCase, roles.Reporter},
		{"investigator cannot reject a case", Initial, ActionRejectCase, roles.Investigator},
		{"approver cannot resubmit a case", State{ApproverRejected, IncidentNone}, ActionResubmitCase, roles.Approver},
		{"gohse team cannot approve an investigation", State{ApproverApproved, IncidentReportPendingApproval}, ActionApproveInvestigation, roles.GOHSETeam},
		{"observer cannot close a case", State{ApproverApproved, IncidentCAPAInAction}, ActionCloseCase, roles.Observer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, _, err := Apply(tc.from, tc.action, tc.role)

			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.from, invalid.Current)
			assert.Equal(t, tc.action, invalid.Action)
			// A failed guard leaves the state untouched.
			assert.Equal(t, tc.from, next)
		})
	}
}

func TestApplyRejectsMissingEdge(t *testing.T) {
	cases := []struct {
		name   string
		from   State
		action Action
		role   roles.Role
	}{
		{"close before CAPA", Initial, ActionCloseCase, roles.GOHSEManager},
		{"close while pending investigation", State{ApproverApproved, IncidentPendingInvestigationReport}, ActionCloseCase, roles.GOHSEManager},
		{"approve twice", State{ApproverApproved, IncidentPendingInvestigationReport}, ActionApproveCase, roles.Approver},
		{"submit before opening", State{ApproverApproved, IncidentPendingInvestigationReport}, ActionSubmitInvestigation, roles.Investigator},
		{"resubmit a case that was not rejected", Initial, ActionResubmitCase, roles.Reporter},
		{"any action on a closed case", State{ApproverClosed, IncidentClosed}, ActionApproveCase, roles.Approver},
		{"reopen a closed case", State{ApproverClosed, IncidentClosed}, ActionOpenInvestigation, roles.Investigator},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, event, err := Apply(tc.from, tc.action, tc.role)

			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.from, next)
			assert.Empty(t, event)
		})
	}
}

func TestRequiresComment(t *testing.T) {
	assert.True(t, RequiresComment(ActionRejectCase))
	assert.True(t, RequiresComment(ActionRejectInvestigation))

	assert.False(t, RequiresComment(ActionApproveCase))
	assert.False(t, RequiresComment(ActionResubmitCase))
	assert.False(t, RequiresComment(ActionOpenInvestigation))
	assert.False(t, RequiresComment(ActionSubmitInvestigation))
	assert.False(t, RequiresComment(ActionApproveInvestigation))
	assert.False(t, RequiresComment(ActionResubmitInvestigation))
	assert.False(t, RequiresComment(ActionCloseCase))
}
