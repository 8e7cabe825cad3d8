package notify

import (
	"strings"

	"github.com/ohse-platform/incident-backend/internal/lifecycle"
	"github.com/ohse-platform/incident-backend/internal/risk"
	"github.com/ohse-platform/incident-backend/internal/roles"
)

// scenario is one message template, parameterized by case number and the
// affected person's name.
type scenario struct {
	subject string
	body    string
}

var scenarios = map[string]scenario{
	"approver_low_risk": {
		subject: "Incident Case Approval Required - {case_number}",
		body:    "{victim_name} incident case is due for approval.",
	},
	"approver_high_risk": {
		subject: "Incident Case Approval Required (High Risk) - {case_number}",
		body:    "{victim_name} incident case is due for approval within 24 hours.",
	},
	"approver_critical_risk": {
		subject: "Incident Case Approval Required (Critical Risk) - {case_number}",
		body: "{victim_name} incident case is due for approval within 12 hours. " +
			"Please note that the case must also be notified to DOSH by the quickest means available.",
	},
	"approver_reject": {
		subject: "Incident Case Rejected - {case_number}",
		body:    "{victim_name} incident case is rejected.",
	},
	"investigator": {
		subject: "Incident Case Investigation Required - {case_number}",
		body:    "{victim_name} incident case is due for investigation.",
	},
	"manager_approve_investigation": {
		subject: "Investigation Approval Required - {case_number}",
		body:    "{victim_name} incident case investigation report is due for approval.",
	},
	"manager_close": {
		subject: "Incident Case Closed - {case_number}",
		body:    "{victim_name} incident case is closed.",
	},
	"gohse_team_update": {
		subject: "Incident Case Update - {case_number}",
		body:    "{victim_name} incident case has a status update.",
	},
}

// approvalScenario picks the approval-required template for a risk tier.
// Unknown tier carries no firm SLA and uses the low-risk wording.
func approvalScenario(tier risk.Tier) string {
	switch tier {
	case risk.TierHigh:
		return "approver_high_risk"
	case risk.TierCritical:
		return "approver_critical_risk"
	default:
		return "approver_low_risk"
	}
}

// routing maps a lifecycle event to its template and recipient roles.
// Events absent from the map produce no notification.
func routing(event lifecycle.Event, tier risk.Tier) (string, []roles.Role) {
	switch event {
	case lifecycle.EventCaseCreated, lifecycle.EventCaseResubmitted:
		return approvalScenario(tier), []roles.Role{roles.Approver}
	case lifecycle.EventCaseApproved:
		return "investigator", []roles.Role{roles.Investigator}
	case lifecycle.EventCaseRejected:
		return "approver_reject", []roles.Role{roles.Reporter}
	case lifecycle.EventInvestigationSubmitted:
		return "manager_approve_investigation", []roles.Role{roles.GOHSEManager}
	case lifecycle.EventInvestigationApproved:
		return "gohse_team_update", []roles.Role{roles.Reporter, roles.Investigator}
	case lifecycle.EventInvestigationRejected:
		return "gohse_team_update", []roles.Role{roles.Investigator}
	case lifecycle.EventCaseClosed:
		return "manager_close", []roles.Role{roles.Reporter, roles.Approver, roles.Investigator}
	}
	return "", nil
}

func render(template, caseNumber, victimName string) string {
	s := strings.ReplaceAll(template, "{case_number}", caseNumber)
	return strings.ReplaceAll(s, "{victim_name}", victimName)
}
