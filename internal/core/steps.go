package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FinalStep is the completedStep value of a finished case.
const FinalStep = 10

// ErrUnknownStep is returned when a step filter is neither a catalogue key nor an integer.
var ErrUnknownStep = errors.New("unknown processing step")

// Step is one entry of the sidebar step catalogue. IDs are strings because the
// catalogue carries the "submitted" sub-stages 1a and 4a.
type Step struct {
	ID   string
	Name string
	Icon string
}

// Steps is the sidebar catalogue, in display order.
var Steps = []Step{
	{ID: "1", Name: "Offer Letter", Icon: "fa-envelope"},
	{ID: "1a", Name: "Offer Letter (Submitted)", Icon: "fa-envelope-open"},
	{ID: "2", Name: "Insurance", Icon: "fa-shield"},
	{ID: "3", Name: "Labour Card", Icon: "fa-credit-card"},
	{ID: "4", Name: "E-Visa", Icon: "fa-ticket"},
	{ID: "4a", Name: "E-Visa (Submitted)", Icon: "fa-file-check"},
	{ID: "5", Name: "Change Status", Icon: "fa-exchange"},
	{ID: "6", Name: "Medical", Icon: "fa-medkit"},
	{ID: "7", Name: "Emirates ID", Icon: "fa-id-card"},
	{ID: "8", Name: "Visa Stamping", Icon: "fa-stamp"},
	{ID: "9", Name: "Contract Submission", Icon: "fa-file-signature"},
	{ID: "10", Name: "Completed", Icon: "fa-check-circle"},
}

// stepFilters translates a catalogue step into the completedStep value the
// residences endpoint filters on. Note 1a shifts every later step by one and
// 4a maps to the same value as 4.
var stepFilters = map[string]int{
	"1": 1, "1a": 2, "2": 3, "3": 4, "4": 5,
	"4a": 5, "5": 6, "6": 7, "7": 8, "8": 9,
	"9": 10, "10": 10,
}

// StepName returns the catalogue name for id, or "" if id is not in the catalogue.
func StepName(id string) string {
	for _, s := range Steps {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}

// StepFilter resolves a UI step into the numeric completedStep filter.
// An empty step means no filter and returns ok=false.
func StepFilter(step string) (value int, ok bool, err error) {
	step = strings.TrimSpace(step)
	if step == "" {
		return 0, false, nil
	}
	if v, found := stepFilters[step]; found {
		return v, true, nil
	}
	v, err := strconv.Atoi(step)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	return v, true, nil
}

// Badge is the visual class of a status label.
type Badge string

const (
	BadgePrimary Badge = "primary"
	BadgeInfo    Badge = "info"
	BadgeWarning Badge = "warning"
	BadgeSuccess Badge = "success"
	BadgeDanger  Badge = "danger"
)

// StepBadge maps a completedStep value to its badge. Defined for every int.
func StepBadge(completedStep int) Badge {
	switch {
	case completedStep == FinalStep:
		return BadgeSuccess
	case completedStep >= 7:
		return BadgeInfo
	case completedStep >= 4:
		return BadgeWarning
	default:
		return BadgePrimary
	}
}

// TimelineStep is one of the ten fixed processing stages shown on the detail view.
type TimelineStep struct {
	Number int
	Name   string
	Icon   string
	date   func(*ResidenceDetail) string
}

var timelineSteps = []TimelineStep{
	{Number: 1, Name: "Offer Letter", Icon: "fa-envelope", date: func(d *ResidenceDetail) string { return d.OfferLetterDate }},
	{Number: 2, Name: "Insurance", Icon: "fa-shield", date: func(d *ResidenceDetail) string { return d.InsuranceDate }},
	{Number: 3, Name: "Labour Card", Icon: "fa-credit-card", date: func(d *ResidenceDetail) string { return d.LaborCardDate }},
	{Number: 4, Name: "E-Visa", Icon: "fa-ticket", date: func(d *ResidenceDetail) string { return d.EVisaDate }},
	{Number: 5, Name: "Change Status", Icon: "fa-exchange", date: func(d *ResidenceDetail) string { return d.ChangeStatusDate }},
	{Number: 6, Name: "Medical", Icon: "fa-medkit", date: func(d *ResidenceDetail) string { return d.MedicalDate }},
	{Number: 7, Name: "Emirates ID", Icon: "fa-id-card", date: func(d *ResidenceDetail) string { return d.EmiratesIDDate }},
	{Number: 8, Name: "Visa Stamping", Icon: "fa-stamp", date: func(d *ResidenceDetail) string { return d.VisaStampingDate }},
	{Number: 9, Name: "Contract Submission", Icon: "fa-file-signature"},
	{Number: 10, Name: "Completed", Icon: "fa-check-circle"},
}

// TimelineEntry is a TimelineStep projected against one residence.
type TimelineEntry struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Done        bool   `json:"done"`
	Current     bool   `json:"current"`
	CompletedOn string `json:"completed_on,omitempty"`
}

// Timeline projects completedStep onto the ten stages: stages up to and
// including completedStep are done, and the one after it is current.
func Timeline(d *ResidenceDetail) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(timelineSteps))
	for _, s := range timelineSteps {
		e := TimelineEntry{
			Number:  s.Number,
			Name:    s.Name,
			Icon:    s.Icon,
			Done:    d.CompletedStep >= s.Number,
			Current: d.CompletedStep == s.Number-1,
		}
		if s.date != nil {
			e.CompletedOn = s.date(d)
		}
		out = append(out, e)
	}
	return out
}
