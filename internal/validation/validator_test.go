package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ohse-platform/incident-backend/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	registry, err := schema.Load()
	require.NoError(t, err)
	return New(registry)
}

func mustJSON(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func validInvestigation() map[string]any {
	return map[string]any{
		"investigation_team_details": map[string]any{
			"team_members": []any{
				map[string]any{"name": "Alice Tan", "designation": "Safety Officer", "is_leader": true},
				map[string]any{"name": "Bob Lee", "designation": "Technician", "is_leader": false},
			},
			"other_people": []any{
				map[string]any{"name": "Carol Ng", "designation": "Supervisor", "involvement": "Witness"},
			},
			"investigation_start_date": "2025-03-01",
			"investigation_end_date":   "2025-03-15",
		},
		"events": map[string]any{
			"before_incident": []any{
				map[string]any{"date": "2025-03-02", "description": "Forklift serviced"},
			},
			"during_incident": []any{
				map[string]any{"date": "2025-03-03", "time": "14:20", "description": "Pallet slipped off the forks"},
			},
			"after_incident": []any{
				map[string]any{"date": "2025-03-03", "description": "Area cordoned off"},
			},
		},
		"findings": map[string]any{
			"immediate_causes": "Unsecured load",
			"root_causes":      "Missing load restraint procedure",
		},
		"corrective_preventive_action": map[string]any{
			"action": map[string]any{
				"description":      "Introduce load restraint checklist",
				"person_in_charge": "Alice Tan",
				"due_date":         "2025-03-20",
				"completion_date":  "2025-03-25",
			},
		},
		"submitter_information": map[string]any{
			"name_of_submitter": "Alice Tan",
			"designation":       "Safety Officer",
			"date":              "2025-03-15",
		},
	}
}

func validReporting() map[string]any {
	return map[string]any{
		"incidents": map[string]any{
			"business_unit":     "Logistics",
			"site_name":         "Warehouse 3",
			"date_of_incident":  "2025-03-03",
			"time_of_incident":  "14:20",
			"location":          "Loading bay",
			"description":       "Pallet fell from forklift",
			"incident_type":     "Health & Safety",
			"incident_category": "First aid",
			"nature_of_injury":  "Bruise",
			"injured_body_part": "Hand",
		},
		"injuredPersons": map[string]any{
			"name":                 "Daniel Wong",
			"designation":          "Warehouse Assistant",
			"department":           "Logistics",
			"age":                  34,
			"immediate_supervisor": "Carol Ng",
			"employment_type":      "Employee",
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
	}
}

func TestValidateAcceptsValidDocuments(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Validate(schema.Investigation, mustJSON(t, validInvestigation())))
	assert.NoError(t, v.Validate(schema.Reporting, mustJSON(t, validReporting())))
	assert.NoError(t, v.Validate(schema.Enquiry, []byte(`{
		"subject": "Expired extinguisher",
		"description": "The extinguisher on level 2 is past its service date",
		"category": "General",
		"email": "carol.ng@example.com"
	}`)))
}

func TestValidateUnknownSchema(t *testing.T) {
	v := newValidator(t)
	err := v.Validate("payroll", []byte(`{}`))
	require.Error(t, err)

	var violation *SchemaViolationError
	assert.False(t, errors.As(err, &violation))
}

func TestValidateMalformedJSON(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(schema.Reporting, []byte(`{"incidents":`))

	var violation *SchemaViolationError
	require.ErrorAs(t, err, &violation)
	require.Len(t, violation.Fields, 1)
	assert.Equal(t, "(document)", violation.Fields[0].Field)
}

func TestValidateStructuralFailureSkipsDomainRules(t *testing.T) {
	v := newValidator(t)

	doc := validInvestigation()
	delete(doc, "findings")
	// Would also trip a domain rule, but the structural pass must fail first
	// and report alone.
	doc["submitter_information"].(map[string]any)["name_of_submitter"] = "  "

	err := v.Validate(schema.Investigation, mustJSON(t, doc))

	var violation *SchemaViolationError
	require.ErrorAs(t, err, &violation)
	for _, f := range violation.Fields {
		assert.NotEqual(t, "submitter_information.name_of_submitter", f.Field)
	}
}

func TestValidateCollectsEveryDomainViolation(t *testing.T) {
	v := newValidator(t)

	doc := validInvestigation()
	team := doc["investigation_team_details"].(map[string]any)
	// Two leaders.
	team["team_members"] = []any{
		map[string]any{"name": "Alice Tan", "designation": "Safety Officer", "is_leader": true},
		map[string]any{"name": "Bob Lee", "designation": "Technician", "is_leader": true},
	}
	// Duplicate name among other people.
	team["other_people"] = []any{
		map[string]any{"name": "Carol Ng"},
		map[string]any{"name": "Carol Ng"},
	}
	// Completion before due date.
	action := doc["corrective_preventive_action"].(map[string]any)["action"].(map[string]any)
	action["due_date"] = "2025-03-20"
	action["completion_date"] = "2025-03-18"

	err := v.Validate(schema.Investigation, mustJSON(t, doc))

	var violation *SchemaViolationError
	require.ErrorAs(t, err, &violation)
	require.Len(t, violation.Fields, 3)

	fields := make(map[string]bool)
	for _, f := range violation.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["investigation_team_details.team_members"])
	assert.True(t, fields["investigation_team_details.other_people"])
	assert.True(t, fields["corrective_preventive_action.action.completion_date"])
}

func TestValidateInvestigationPeriod(t *testing.T) {
	v := newValidator(t)

	t.Run("start after end", func(t *testing.T) {
		doc := validInvestigation()
		team := doc["investigation_team_details"].(map[string]any)
		team["investigation_start_date"] = "2025-03-10"
		team["investigation_end_date"] = "2025-03-05"
		// Keep events inside neither bound; the period check is skipped when
		// the period itself is invalid.
		events := doc["events"].(map[string]any)
		events["before_incident"] = []any{
			map[string]any{"date": "2025-03-07", "description": "Routine check"},
		}

		err := v.Validate(schema.Investigation, mustJSON(t, doc))

		var violation *SchemaViolationError
		require.ErrorAs(t, err, &violation)
		require.Len(t, violation.Fields, 1)
		assert.Equal(t, "investigation_team_details.investigation_start_date", violation.Fields[0].Field)
	})

	t.Run("event outside period", func(t *testing.T) {
		doc := validInvestigation()
		events := doc["events"].(map[string]any)
		events["after_incident"] = []any{
			map[string]any{"date": "2025-04-01", "description": "Follow-up inspection"},
		}

		err := v.Validate(schema.Investigation, mustJSON(t, doc))

		var violation *SchemaViolationError
		require.ErrorAs(t, err, &violation)
		require.Len(t, violation.Fields, 1)
		assert.Equal(t, "events.after_incident[0].date", violation.Fields[0].Field)
	})

	t.Run("malformed event date", func(t *testing.T) {
		doc := validInvestigation()
		events := doc["events"].(map[string]any)
		events["during_incident"] = []any{
			map[string]any{"date": "03/03/2025", "description": "Pallet slipped"},
		}

		err := v.Validate(schema.Investigation, mustJSON(t, doc))

		var violation *SchemaViolationError
		require.ErrorAs(t, err, &violation)
		require.Len(t, violation.Fields, 1)
		assert.Equal(t, "events.during_incident[0].date", violation.Fields[0].Field)
	})
}

func TestValidateReportingMedicalDates(t *testing.T) {
	v := newValidator(t)

	doc := validReporting()
	medical := doc["medicalInfo"].(map[string]any)
	medical["ward_admitted_start_date"] = "2025-03-10"
	medical["ward_admitted_end_date"] = "2025-03-05"
	medical["med_cert_start_date"] = "2025-03-10"
	medical["med_cert_end_date"] = "2025-03-05"

	err := v.Validate(schema.Reporting, mustJSON(t, doc))

	var violation *SchemaViolationError
	require.ErrorAs(t, err, &violation)
	require.Len(t, violation.Fields, 2)

	fields := make(map[string]bool)
	for _, f := range violation.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["medicalInfo.ward_admitted_start_date"])
	assert.True(t, fields["medicalInfo.med_cert_start_date"])
}

func TestValidateReportingOtherCategory(t *testing.T) {
	v := newValidator(t)

	doc := validReporting()
	incidents := doc["incidents"].(map[string]any)
	incidents["incident_category"] = "Other"

	err := v.Validate(schema.Reporting, mustJSON(t, doc))
	require.Error(t, err, "Other category without free text must fail")

	incidents["other_incident_category"] = "Slip hazard near entrance"
	assert.NoError(t, v.Validate(schema.Reporting, mustJSON(t, doc)))
}
