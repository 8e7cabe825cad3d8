package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate parses a calendar date with no time-of-day component.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

type investigationDoc struct {
	Team struct {
		TeamMembers []struct {
			Name     string `json:"name"`
			IsLeader bool   `json:"is_leader"`
		} `json:"team_members"`
		OtherPeople []struct {
			Name string `json:"name"`
		} `json:"other_people"`
		StartDate string `json:"investigation_start_date"`
		EndDate   string `json:"investigation_end_date"`
	} `json:"investigation_team_details"`
	Events struct {
		Before []investigationEvent `json:"before_incident"`
		During []investigationEvent `json:"during_incident"`
		After  []investigationEvent `json:"after_incident"`
	} `json:"events"`
	CAPA struct {
		Action struct {
			DueDate        string `json:"due_date"`
			CompletionDate string `json:"completion_date"`
		} `json:"action"`
	} `json:"corrective_preventive_action"`
	Submitter struct {
		Name        string `json:"name_of_submitter"`
		Designation string `json:"designation"`
		Date        string `json:"date"`
	} `json:"submitter_information"`
}

type investigationEvent struct {
	Date string `json:"date"`
}

// investigationRules applies the cross-field business rules of the
// investigation form. The document has already passed the structural
// check, so unmarshalling cannot fail on shape.
func investigationRules(document []byte) []FieldError {
	var doc investigationDoc
	if err := json.Unmarshal(document, &doc); err != nil {
		return []FieldError{{Field: "(document)", Message: "not a valid JSON document"}}
	}

	var errs []FieldError

	leaders := 0
	for _, m := range doc.Team.TeamMembers {
		if m.IsLeader {
			leaders++
		}
	}
	if leaders != 1 {
		errs = append(errs, FieldError{
			Field:   "investigation_team_details.team_members",
			Message: "there must be exactly one team leader",
		})
	}

	if dup := firstDuplicate(memberNames(doc)); dup != "" {
		errs = append(errs, FieldError{
			Field:   "investigation_team_details.team_members",
			Message: fmt.Sprintf("duplicate team member name %q", dup),
		})
	}
	otherNames := make([]string, 0, len(doc.Team.OtherPeople))
	for _, p := range doc.Team.OtherPeople {
		otherNames = append(otherNames, p.Name)
	}
	if dup := firstDuplicate(otherNames); dup != "" {
		errs = append(errs, FieldError{
			Field:   "investigation_team_details.other_people",
			Message: fmt.Sprintf("duplicate name %q", dup),
		})
	}

	start, startErr := parseDate(doc.Team.StartDate)
	end, endErr := parseDate(doc.Team.EndDate)
	periodOK := startErr == nil && endErr == nil
	if startErr != nil || endErr != nil {
		errs = append(errs, FieldError{
			Field:   "investigation_team_details",
			Message: "investigation dates must be YYYY-MM-DD",
		})
	} else if start.After(end) {
		errs = append(errs, FieldError{
			Field:   "investigation_team_details.investigation_start_date",
			Message: "investigation_start_date must not be after investigation_end_date",
		})
	}

	phases := []struct {
		name   string
		events []investigationEvent
	}{
		{"before_incident", doc.Events.Before},
		{"during_incident", doc.Events.During},
		{"after_incident", doc.Events.After},
	}
	for _, phase := range phases {
		for i, ev := range phase.events {
			d, err := parseDate(ev.Date)
			if err != nil {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("events.%s[%d].date", phase.name, i),
					Message: "event date must be YYYY-MM-DD",
				})
				continue
			}
			if periodOK && (d.Before(start) || d.After(end)) {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("events.%s[%d].date", phase.name, i),
					Message: "event date must be within the investigation period",
				})
			}
		}
	}

	due, dueErr := parseDate(doc.CAPA.Action.DueDate)
	completion, complErr := parseDate(doc.CAPA.Action.CompletionDate)
	if dueErr != nil || complErr != nil {
		errs = append(errs, FieldError{
			Field:   "corrective_preventive_action.action",
			Message: "corrective action dates must be YYYY-MM-DD",
		})
	} else if completion.Before(due) {
		errs = append(errs, FieldError{
			Field:   "corrective_preventive_action.action.completion_date",
			Message: "completion_date must not be before due_date",
		})
	}

	if strings.TrimSpace(doc.Submitter.Name) == "" {
		errs = append(errs, FieldError{
			Field:   "submitter_information.name_of_submitter",
			Message: "submitter name cannot be blank",
		})
	}
	if strings.TrimSpace(doc.Submitter.Designation) == "" {
		errs = append(errs, FieldError{
			Field:   "submitter_information.designation",
			Message: "submitter designation cannot be blank",
		})
	}
	if _, err := parseDate(doc.Submitter.Date); err != nil {
		errs = append(errs, FieldError{
			Field:   "submitter_information.date",
			Message: "submitter date must be a valid YYYY-MM-DD date",
		})
	}

	return errs
}

type reportingDoc struct {
	MedicalInfo struct {
		MedCertStart string `json:"med_cert_start_date"`
		MedCertEnd   string `json:"med_cert_end_date"`
		WardStart    string `json:"ward_admitted_start_date"`
		WardEnd      string `json:"ward_admitted_end_date"`
	} `json:"medicalInfo"`
}

// reportingRules checks the medical date ranges of the reporting form.
func reportingRules(document []byte) []FieldError {
	var doc reportingDoc
	if err := json.Unmarshal(document, &doc); err != nil {
		return []FieldError{{Field: "(document)", Message: "not a valid JSON document"}}
	}

	var errs []FieldError
	errs = append(errs, dateOrder("medicalInfo.ward_admitted_start_date",
		doc.MedicalInfo.WardStart, doc.MedicalInfo.WardEnd,
		"ward admitted start date cannot be after end date")...)
	errs = append(errs, dateOrder("medicalInfo.med_cert_start_date",
		doc.MedicalInfo.MedCertStart, doc.MedicalInfo.MedCertEnd,
		"medical cert start date cannot be after end date")...)
	return errs
}

func dateOrder(field, startStr, endStr, message string) []FieldError {
	start, startErr := parseDate(startStr)
	end, endErr := parseDate(endStr)
	if startErr != nil || endErr != nil {
		return []FieldError{{Field: field, Message: "dates must be YYYY-MM-DD"}}
	}
	if start.After(end) {
		return []FieldError{{Field: field, Message: message}}
	}
	return nil
}

func memberNames(doc investigationDoc) []string {
	names := make([]string, 0, len(doc.Team.TeamMembers))
	for _, m := range doc.Team.TeamMembers {
		names = append(names, m.Name)
	}
	return names
}

func firstDuplicate(names []string) string {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
	}
	return ""
}
