// internal/estimate/types.go
//
// Scope, assumption and result types shared by the engine and every
// collaborator that renders or edits an estimate.

package estimate

import "strings"

// Complexity is the 1..5 difficulty level of the mapping work.
type Complexity int

const (
	ComplexityVeryLow Complexity = iota + 1
	ComplexityLow
	ComplexityNormal
	ComplexityHigh
	ComplexityVeryHigh
)

var complexityLabels = map[Complexity]string{
	ComplexityVeryLow:  "Very Low",
	ComplexityLow:      "Low",
	ComplexityNormal:   "Normal",
	ComplexityHigh:     "High",
	ComplexityVeryHigh: "Very High",
}

// Label returns the human readable name shown next to the complexity slider.
func (c Complexity) Label() string {
	if label, ok := complexityLabels[c]; ok {
		return label
	}
	return ""
}

// Valid reports whether c is one of the five supported levels.
func (c Complexity) Valid() bool {
	return c >= ComplexityVeryLow && c <= ComplexityVeryHigh
}

// ExecutionMode controls whether cohorts run side by side or one after another.
type ExecutionMode string

const (
	ExecutionParallel   ExecutionMode = "parallel"
	ExecutionSequential ExecutionMode = "sequential"
)

// ParseExecutionMode maps free text onto a mode, defaulting to parallel.
func ParseExecutionMode(value string) ExecutionMode {
	if strings.EqualFold(strings.TrimSpace(value), string(ExecutionSequential)) {
		return ExecutionSequential
	}
	return ExecutionParallel
}

// Currency is the display currency of the estimate.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Currencies lists the supported currencies in picker order.
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP}

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
}

// Symbol returns the currency sign, "$" for anything unknown.
func (c Currency) Symbol() string {
	if sym, ok := currencySymbols[c]; ok {
		return sym
	}
	return "$"
}

// ParseCurrency normalizes a currency code. Unknown codes fall back to USD.
func ParseCurrency(value string) Currency {
	code := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := currencySymbols[code]; ok {
		return code
	}
	return CurrencyUSD
}

// Confidence is the qualitative reliability of an estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Label returns e.g. "High Confidence".
func (c Confidence) Label() string {
	switch c {
	case ConfidenceHigh:
		return "High Confidence"
	case ConfidenceLow:
		return "Low Confidence"
	default:
		return "Medium Confidence"
	}
}

// AddOn is an optional deliverable with its own effort.
type AddOn struct {
	ID      string  `json:"id" yaml:"id" toml:"id"`
	Label   string  `json:"label" yaml:"label" toml:"label"`
	Hours   float64 `json:"hours" yaml:"hours" toml:"hours"`
	Enabled bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// DefaultAddOns returns a fresh copy of the add-on catalog in display order.
func DefaultAddOns() []AddOn {
	return []AddOn{
		{ID: "architecture", Label: "Job Architecture", Hours: 24},
		{ID: "change", Label: "Change & Communications", Hours: 16},
		{ID: "training", Label: "Training & Enablement", Hours: 12, Enabled: true},
		{ID: "integrations", Label: "Integrations (SSO, APIs)", Hours: 24},
		{ID: "governance", Label: "Governance Sprints", Hours: 20},
	}
}

// Cohort is one phase of a phased rollout.
type Cohort struct {
	ID         string `json:"id" yaml:"id" toml:"id"`
	Name       string `json:"name" yaml:"name" toml:"name"`
	RolesShare int    `json:"roles_share" yaml:"roles_share" toml:"roles_share"`
	// StartDate is an ISO date (2006-01-02); empty means unscheduled.
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty" toml:"start_date,omitempty"`
}

// Inputs describes the scope of the engagement.
type Inputs struct {
	ClientName    string        `json:"client_name" yaml:"client_name" toml:"client_name"`
	RolesToMap    int           `json:"roles_to_map" yaml:"roles_to_map" toml:"roles_to_map"`
	JobFamilies   int           `json:"job_families" yaml:"job_families" toml:"job_families"`
	Complexity    Complexity    `json:"complexity" yaml:"complexity" toml:"complexity"`
	CohortCount   int           `json:"cohort_count" yaml:"cohort_count" toml:"cohort_count"`
	TargetDate    string        `json:"target_date,omitempty" yaml:"target_date,omitempty" toml:"target_date,omitempty"`
	ExecutionMode ExecutionMode `json:"execution_mode" yaml:"execution_mode" toml:"execution_mode"`
	AddOns        []AddOn       `json:"add_ons" yaml:"add_ons" toml:"add_ons"`
	Cohorts       []Cohort      `json:"cohorts" yaml:"cohorts" toml:"cohorts"`
}

// DefaultInputs returns the scope a new session starts with.
func DefaultInputs() Inputs {
	return Inputs{
		RolesToMap:    100,
		JobFamilies:   10,
		Complexity:    ComplexityNormal,
		CohortCount:   1,
		ExecutionMode: ExecutionParallel,
		AddOns:        DefaultAddOns(),
		Cohorts:       []Cohort{{ID: "1", Name: "Cohort 1", RolesShare: 100}},
	}
}

// Clone returns a deep copy so callers can hand inputs out without aliasing.
func (in Inputs) Clone() Inputs {
	out := in
	out.AddOns = append([]AddOn(nil), in.AddOns...)
	out.Cohorts = append([]Cohort(nil), in.Cohorts...)
	return out
}

// Equal compares two scopes field by field, including add-ons and cohorts.
func (in Inputs) Equal(other Inputs) bool {
	if in.ClientName != other.ClientName ||
		in.RolesToMap != other.RolesToMap ||
		in.JobFamilies != other.JobFamilies ||
		in.Complexity != other.Complexity ||
		in.CohortCount != other.CohortCount ||
		in.TargetDate != other.TargetDate ||
		in.ExecutionMode != other.ExecutionMode {
		return false
	}
	if len(in.AddOns) != len(other.AddOns) || len(in.Cohorts) != len(other.Cohorts) {
		return false
	}
	for i := range in.AddOns {
		if in.AddOns[i] != other.AddOns[i] {
			return false
		}
	}
	for i := range in.Cohorts {
		if in.Cohorts[i] != other.Cohorts[i] {
			return false
		}
	}
	return true
}

// Assumptions are the global rate and productivity parameters.
type Assumptions struct {
	ImplementationRate float64  `json:"implementation_rate" yaml:"implementation_rate" toml:"implementation_rate"`
	EnablementRate     float64  `json:"enablement_rate" yaml:"enablement_rate" toml:"enablement_rate"`
	ResearchRate       float64  `json:"research_rate" yaml:"research_rate" toml:"research_rate"`
	ExternalRate       float64  `json:"external_rate" yaml:"external_rate" toml:"external_rate"`
	HoursPerRole       float64  `json:"hours_per_role" yaml:"hours_per_role" toml:"hours_per_role"`
	ProductivityFactor float64  `json:"productivity_factor" yaml:"productivity_factor" toml:"productivity_factor"`
	WorkingDaysPerWeek int      `json:"working_days_per_week" yaml:"working_days_per_week" toml:"working_days_per_week"`
	Currency           Currency `json:"currency" yaml:"currency" toml:"currency"`
	FXRate             float64  `json:"fx_rate" yaml:"fx_rate" toml:"fx_rate"`
}

// DefaultAssumptions returns the stock rate card.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ImplementationRate: 175,
		EnablementRate:     150,
		ResearchRate:       125,
		ExternalRate:       200,
		HoursPerRole:       2.5,
		ProductivityFactor: 0.85,
		WorkingDaysPerWeek: 5,
		Currency:           CurrencyUSD,
		FXRate:             1,
	}
}

// Breakdown is the cost per pool, each rounded to whole currency units.
type Breakdown struct {
	Implementation int64 `json:"implementation"`
	Enablement     int64 `json:"enablement"`
	Research       int64 `json:"research"`
	External       int64 `json:"external"`
}

// Sum adds the four pools.
func (b Breakdown) Sum() int64 {
	return b.Implementation + b.Enablement + b.Research + b.External
}

// Results is the derived estimate.
type Results struct {
	TotalCost       int64      `json:"total_cost"`
	TotalWeeks      int        `json:"total_weeks"`
	FTEEquivalent   float64    `json:"fte_equivalent"`
	ConfidenceLevel Confidence `json:"confidence_level"`
	Breakdown       Breakdown  `json:"breakdown"`
}
