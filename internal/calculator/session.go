// internal/calculator/session.go
//
// Session is the mutable side of the planner. It owns the scope inputs and the
// rate card, applies one explicit operation per user edit, and recomputes the
// estimate lazily whenever either of them has changed.

package calculator

import (
	"math"
	"strings"

	"github.com/kingrea/swp-planner/internal/estimate"
)

// Mode controls which sections of the form are editable.
type Mode string

const (
	ModeQuick    Mode = "quick"
	ModeDetailed Mode = "detailed"
)

// ParseMode maps free text onto a mode, defaulting to quick.
func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeDetailed)) {
		return ModeDetailed
	}
	return ModeQuick
}

// Field bounds enforced by the session.
const (
	MinCohorts    = 1
	MaxCohorts    = 5
	MinWorkingDay = 1
	MaxWorkingDay = 7
)

// Session holds one user's planner state. It is not safe for concurrent use.
type Session struct {
	mode        Mode
	inputs      estimate.Inputs
	assumptions estimate.Assumptions

	cache resultCache
}

// Option customizes a new session.
type Option func(*Session)

// WithAssumptions seeds the rate card, e.g. from project configuration.
func WithAssumptions(a estimate.Assumptions) Option {
	return func(s *Session) {
		s.assumptions = sanitizeAssumptions(a)
	}
}

// WithMode sets the starting mode.
func WithMode(m Mode) Option {
	return func(s *Session) {
		s.mode = ParseMode(string(m))
	}
}

// NewSession creates a session with the default scope and rate card.
func NewSession(opts ...Option) *Session {
	s := &Session{
		mode:        ModeQuick,
		inputs:      estimate.DefaultInputs(),
		assumptions: estimate.DefaultAssumptions(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Mode returns the current form mode.
func (s *Session) Mode() Mode { return s.mode }

// Inputs returns a copy of the current scope.
func (s *Session) Inputs() estimate.Inputs { return s.inputs.Clone() }

// Assumptions returns the current rate card.
func (s *Session) Assumptions() estimate.Assumptions { return s.assumptions }

// Results returns the estimate for the current state.
func (s *Session) Results() estimate.Results {
	return s.cache.get(s.inputs, s.assumptions)
}

// ComplexityLabel is the display name of the current complexity level.
func (s *Session) ComplexityLabel() string {
	return s.inputs.Complexity.Label()
}

// Snapshot is the read-only view handed to presentation code.
type Snapshot struct {
	Mode            Mode                 `json:"mode"`
	Inputs          estimate.Inputs      `json:"inputs"`
	Assumptions     estimate.Assumptions `json:"assumptions"`
	Results         estimate.Results     `json:"results"`
	ComplexityLabel string               `json:"complexity_label"`
}

// Snapshot captures the session state. Mutating the returned value does not
// affect the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Mode:            s.mode,
		Inputs:          s.inputs.Clone(),
		Assumptions:     s.assumptions,
		Results:         s.Results(),
		ComplexityLabel: s.ComplexityLabel(),
	}
}

// SetMode switches between quick and detailed editing.
func (s *Session) SetMode(m Mode) {
	s.mode = ParseMode(string(m))
}

// SetClientName sets the display-only client name.
func (s *Session) SetClientName(name string) {
	s.inputs.ClientName = name
}

// SetRolesToMap sets the number of roles in scope, at least one.
func (s *Session) SetRolesToMap(n int) {
	s.inputs.RolesToMap = max(1, n)
}

// SetJobFamilies sets the number of job families, at least one.
func (s *Session) SetJobFamilies(n int) {
	s.inputs.JobFamilies = max(1, n)
}

// SetComplexity sets the complexity level, clamped to 1..5.
func (s *Session) SetComplexity(c estimate.Complexity) {
	s.inputs.Complexity = estimate.Complexity(clamp(int(c), int(estimate.ComplexityVeryLow), int(estimate.ComplexityVeryHigh)))
}

// SetTargetDate sets the display-only target date. Unparseable dates clear it.
func (s *Session) SetTargetDate(date string) {
	s.inputs.TargetDate = ParseDate(date)
}

// SetExecutionMode chooses parallel or sequential cohorts.
func (s *Session) SetExecutionMode(m estimate.ExecutionMode) {
	s.inputs.ExecutionMode = estimate.ParseExecutionMode(string(m))
}

// SetCohortCount resizes the cohort list to n (clamped to 1..5). Existing
// names and start dates are kept by position and the roles share is split
// evenly again.
func (s *Session) SetCohortCount(n int) {
	n = clamp(n, MinCohorts, MaxCohorts)
	shares := estimate.SplitShares(n)
	cohorts := make([]estimate.Cohort, n)
	for i := range cohorts {
		c := estimate.Cohort{
			ID:         estimate.CohortID(i),
			Name:       estimate.DefaultCohortName(i),
			RolesShare: shares[i],
		}
		if i < len(s.inputs.Cohorts) {
			prev := s.inputs.Cohorts[i]
			if prev.Name != "" {
				c.Name = prev.Name
			}
			c.StartDate = prev.StartDate
		}
		cohorts[i] = c
	}
	s.inputs.CohortCount = n
	s.inputs.Cohorts = cohorts
}

// ToggleAddOn flips the add-on with the given id. Unknown ids are ignored.
func (s *Session) ToggleAddOn(id string) {
	if i := s.addOnIndex(id); i >= 0 {
		s.inputs.AddOns = append([]estimate.AddOn(nil), s.inputs.AddOns...)
		s.inputs.AddOns[i].Enabled = !s.inputs.AddOns[i].Enabled
	}
}

// UpdateAddOnHours sets the effort of an add-on. Negative or non-finite hours
// are stored as zero.
func (s *Session) UpdateAddOnHours(id string, hours float64) {
	if i := s.addOnIndex(id); i >= 0 {
		s.inputs.AddOns = append([]estimate.AddOn(nil), s.inputs.AddOns...)
		s.inputs.AddOns[i].Hours = nonNegative(hours)
	}
}

// CohortUpdate is a partial edit of a cohort. Nil fields are left untouched.
type CohortUpdate struct {
	Name       *string
	RolesShare *int
	StartDate  *string
}

// UpdateCohort merges u into the cohort with the given id. Shares are not
// re-normalized. Unknown ids are ignored.
func (s *Session) UpdateCohort(id string, u CohortUpdate) {
	idx := -1
	for i, c := range s.inputs.Cohorts {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	s.inputs.Cohorts = append([]estimate.Cohort(nil), s.inputs.Cohorts...)
	c := &s.inputs.Cohorts[idx]
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.RolesShare != nil {
		c.RolesShare = clamp(*u.RolesShare, 0, 100)
	}
	if u.StartDate != nil {
		c.StartDate = ParseDate(*u.StartDate)
	}
}

// SetImplementationRate sets the hourly implementation rate.
func (s *Session) SetImplementationRate(rate float64) {
	s.assumptions.ImplementationRate = nonNegative(rate)
}

// SetEnablementRate sets the hourly enablement rate.
func (s *Session) SetEnablementRate(rate float64) {
	s.assumptions.EnablementRate = nonNegative(rate)
}

// SetResearchRate sets the hourly research rate.
func (s *Session) SetResearchRate(rate float64) {
	s.assumptions.ResearchRate = nonNegative(rate)
}

// SetExternalRate sets the hourly external rate.
func (s *Session) SetExternalRate(rate float64) {
	s.assumptions.ExternalRate = nonNegative(rate)
}

// SetHoursPerRole sets the mapping effort per role. Non-positive values fall
// back to one hour.
func (s *Session) SetHoursPerRole(hours float64) {
	s.assumptions.HoursPerRole = positiveOr(hours, FallbackHoursPerRole)
}

// SetProductivityFactor sets the productivity divisor, which must lie in
// (0, 1]. Anything else falls back to the default.
func (s *Session) SetProductivityFactor(f float64) {
	if !finite(f) || f <= 0 || f > 1 {
		f = FallbackProductivity
	}
	s.assumptions.ProductivityFactor = f
}

// SetWorkingDaysPerWeek sets the working week length. Values outside 1..7 fall
// back to five days.
func (s *Session) SetWorkingDaysPerWeek(days int) {
	if days < MinWorkingDay || days > MaxWorkingDay {
		days = FallbackWorkingDays
	}
	s.assumptions.WorkingDaysPerWeek = days
}

// SetCurrency sets the display currency.
func (s *Session) SetCurrency(c estimate.Currency) {
	s.assumptions.Currency = estimate.ParseCurrency(string(c))
}

// SetFXRate sets the multiplier applied to the final cost.
func (s *Session) SetFXRate(rate float64) {
	s.assumptions.FXRate = positiveOr(rate, FallbackFXRate)
}

func (s *Session) addOnIndex(id string) int {
	for i, a := range s.inputs.AddOns {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func sanitizeAssumptions(a estimate.Assumptions) estimate.Assumptions {
	s := &Session{}
	s.SetImplementationRate(a.ImplementationRate)
	s.SetEnablementRate(a.EnablementRate)
	s.SetResearchRate(a.ResearchRate)
	s.SetExternalRate(a.ExternalRate)
	s.SetHoursPerRole(a.HoursPerRole)
	s.SetProductivityFactor(a.ProductivityFactor)
	s.SetWorkingDaysPerWeek(a.WorkingDaysPerWeek)
	s.SetCurrency(a.Currency)
	s.SetFXRate(a.FXRate)
	return s.assumptions
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}

func positiveOr(v, fallback float64) float64 {
	if !finite(v) || v <= 0 {
		return fallback
	}
	return v
}
