package tui

import (
	"fmt"
	"strconv"

	"github.com/kingrea/swp-planner/internal/calculator"
	"github.com/kingrea/swp-planner/internal/estimate"
)

type fieldKind int

const (
	kindText   fieldKind = iota // free text, committed on every keystroke
	kindChoice                  // cycled with left/right
	kindToggle                  // flipped with space/enter
)

// formField is one focusable row of the form. Only the callbacks matching
// its kind are set.
type formField struct {
	id      string
	section string
	label   string
	kind    fieldKind
	value   func(*calculator.Session) string
	commit  func(*calculator.Session, string)
	step    func(*calculator.Session, int)
	toggle  func(*calculator.Session)
}

const (
	sectionScope    = "Project Scope"
	sectionAddOns   = "Deliverables"
	sectionCohorts  = "Cohorts"
	sectionAdvanced = "Advanced Settings"
)

// buildFields lists the editable rows for the current mode and scope. Add-on
// hours and the advanced settings only appear in detailed mode; cohort rows
// only when the rollout has more than one cohort.
func buildFields(s *calculator.Session) []formField {
	in := s.Inputs()
	fields := []formField{
		textField(sectionScope, "client", "Client name",
			func(s *calculator.Session) string { return s.Inputs().ClientName },
			func(s *calculator.Session, v string) { s.SetClientName(v) }),
		textField(sectionScope, "roles", "Roles to map",
			func(s *calculator.Session) string { return strconv.Itoa(s.Inputs().RolesToMap) },
			func(s *calculator.Session, v string) { s.SetRolesToMap(calculator.ParseCount(v)) }),
		textField(sectionScope, "families", "Job families",
			func(s *calculator.Session) string { return strconv.Itoa(s.Inputs().JobFamilies) },
			func(s *calculator.Session, v string) { s.SetJobFamilies(calculator.ParseCount(v)) }),
		{
			id: "complexity", section: sectionScope, label: "Complexity", kind: kindChoice,
			value: func(s *calculator.Session) string {
				return fmt.Sprintf("%d · %s", s.Inputs().Complexity, s.ComplexityLabel())
			},
			step: func(s *calculator.Session, d int) { s.SetComplexity(s.Inputs().Complexity + estimate.Complexity(d)) },
		},
		{
			id: "cohort-count", section: sectionScope, label: "Number of cohorts", kind: kindChoice,
			value: func(s *calculator.Session) string { return strconv.Itoa(s.Inputs().CohortCount) },
			step:  func(s *calculator.Session, d int) { s.SetCohortCount(s.Inputs().CohortCount + d) },
		},
		textField(sectionScope, "target-date", "Target date",
			func(s *calculator.Session) string { return s.Inputs().TargetDate },
			func(s *calculator.Session, v string) { s.SetTargetDate(v) }),
		{
			id: "execution", section: sectionScope, label: "Execution", kind: kindChoice,
			value: func(s *calculator.Session) string { return string(s.Inputs().ExecutionMode) },
			step: func(s *calculator.Session, _ int) {
				if s.Inputs().ExecutionMode == estimate.ExecutionParallel {
					s.SetExecutionMode(estimate.ExecutionSequential)
				} else {
					s.SetExecutionMode(estimate.ExecutionParallel)
				}
			},
		},
	}

	detailed := s.Mode() == calculator.ModeDetailed
	for _, addOn := range in.AddOns {
		id := addOn.ID
		fields = append(fields, formField{
			id: "addon:" + id, section: sectionAddOns, label: addOn.Label, kind: kindToggle,
			value: func(s *calculator.Session) string {
				if a, ok := findAddOn(s, id); ok && a.Enabled {
					return "[x]"
				}
				return "[ ]"
			},
			toggle: func(s *calculator.Session) { s.ToggleAddOn(id) },
		})
		if detailed && addOn.Enabled {
			fields = append(fields, textField(sectionAddOns, "addon-hours:"+id, "  hours",
				func(s *calculator.Session) string {
					a, _ := findAddOn(s, id)
					return formatNumber(a.Hours)
				},
				func(s *calculator.Session, v string) { s.UpdateAddOnHours(id, calculator.ParseHours(v)) }))
		}
	}

	if in.CohortCount > 1 {
		for _, c := range in.Cohorts {
			id := c.ID
			fields = append(fields,
				textField(sectionCohorts, "cohort-name:"+id, "Cohort "+id+" name",
					cohortValue(id, func(c estimate.Cohort) string { return c.Name }),
					func(s *calculator.Session, v string) { s.UpdateCohort(id, calculator.CohortUpdate{Name: &v}) }),
				textField(sectionCohorts, "cohort-share:"+id, "  roles share %",
					cohortValue(id, func(c estimate.Cohort) string { return strconv.Itoa(c.RolesShare) }),
					func(s *calculator.Session, v string) {
						share := calculator.ParseShare(v)
						s.UpdateCohort(id, calculator.CohortUpdate{RolesShare: &share})
					}),
				textField(sectionCohorts, "cohort-start:"+id, "  start date",
					cohortValue(id, func(c estimate.Cohort) string { return c.StartDate }),
					func(s *calculator.Session, v string) { s.UpdateCohort(id, calculator.CohortUpdate{StartDate: &v}) }),
			)
		}
	}

	if detailed {
		fields = append(fields,
			textField(sectionAdvanced, "rate-implementation", "Implementation rate",
				func(s *calculator.Session) string { return formatNumber(s.Assumptions().ImplementationRate) },
				func(s *calculator.Session, v string) { s.SetImplementationRate(calculator.ParseRate(v)) }),
			textField(sectionAdvanced, "rate-enablement", "Enablement rate",
				func(s *calculator.Session) string { return formatNumber(s.Assumptions().EnablementRate) },
				func(s *calculator.Session, v string) { s.SetEnablementRate(calculator.ParseRate(v)) }),
			textField(sectionAdvanced, "rate-research", "Research rate",
				func(s *calculator.Session) string { return formatNumber(s.Assumptions().ResearchRate) },
				func(s *calculator.Session, v string) { s.SetResearchRate(calculator.ParseRate(v)) }),
			textField(sectionAdvanced, "rate-external", "External rate",
				func(s *calculator.Session) string { return formatNumber(s.Assumptions().ExternalRate) },
				func(s *calculator.Session, v string) { s.SetExternalRate(calculator.ParseRate(v)) }),
			formField{
				id: "currency", section: sectionAdvanced, label: "Currency", kind: kindChoice,
				value: func(s *calculator.Session) string { return string(s.Assumptions().Currency) },
				step: func(s *calculator.Session, d int) {
					s.SetCurrency(cycleCurrency(s.Assumptions().Currency, d))
				},
			},
			textField(sectionAdvanced, "fx", "FX rate",
				func(s *calculator.Session) string { return formatNumber(s.Assumptions().FXRate) },
				func(s *calculator.Session, v string) {
					s.SetFXRate(calculator.ParseFloatOr(v, calculator.FallbackFXRate))
				}),
			textField(sectionAdvanced, "hours-per-role", "Hours per role",
				func(s *calculator.Session) string { return formatNumber(s.Assumptions().HoursPerRole) },
				func(s *calculator.Session, v string) {
					s.SetHoursPerRole(calculator.ParseFloatOr(v, calculator.FallbackHoursPerRole))
				}),
			textField(sectionAdvanced, "productivity", "Productivity factor",
				func(s *calculator.Session) string { return formatNumber(s.Assumptions().ProductivityFactor) },
				func(s *calculator.Session, v string) {
					s.SetProductivityFactor(calculator.ParseFloatOr(v, calculator.FallbackProductivity))
				}),
			textField(sectionAdvanced, "working-days", "Working days / week",
				func(s *calculator.Session) string { return strconv.Itoa(s.Assumptions().WorkingDaysPerWeek) },
				func(s *calculator.Session, v string) {
					s.SetWorkingDaysPerWeek(calculator.ParseIntOr(v, calculator.FallbackWorkingDays))
				}),
		)
	}
	return fields
}

func textField(section, id, label string, value func(*calculator.Session) string, commit func(*calculator.Session, string)) formField {
	return formField{id: id, section: section, label: label, kind: kindText, value: value, commit: commit}
}

func findAddOn(s *calculator.Session, id string) (estimate.AddOn, bool) {
	for _, a := range s.Inputs().AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return estimate.AddOn{}, false
}

func findCohort(s *calculator.Session, id string) (estimate.Cohort, bool) {
	for _, c := range s.Inputs().Cohorts {
		if c.ID == id {
			return c, true
		}
	}
	return estimate.Cohort{}, false
}

func cohortValue(id string, get func(estimate.Cohort) string) func(*calculator.Session) string {
	return func(s *calculator.Session) string {
		c, _ := findCohort(s, id)
		return get(c)
	}
}

func cycleCurrency(current estimate.Currency, delta int) estimate.Currency {
	n := len(estimate.Currencies)
	idx := 0
	for i, c := range estimate.Currencies {
		if c == current {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%n + n) % n
	return estimate.Currencies[idx]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
