// Package estimate turns a scope description and a rate card into a cost
// breakdown, a timeline and a confidence rating.
//
// Compute is pure: it never fails and never validates. Callers are expected
// to clamp inputs before handing them over (see the calculator package).
package estimate

import (
	"math"

	"github.com/shopspring/decimal"
)

// Pool weights and timeline factors are business constants.
const (
	implementationShare = 0.5
	enablementShare     = 0.2
	researchShare       = 0.2
	externalShare       = 0.1

	addOnEnablementShare = 0.6
	addOnExternalShare   = 0.4

	hoursPerWorkingDay    = 8
	hoursPerFTEWeek       = 40
	parallelFactor        = 0.6
	parallelCohortFactor  = 1.2
	sequentialCohortScale = 0.7

	highConfidenceMaxComplexity = ComplexityLow
	highConfidenceMaxRoles      = 200
	lowConfidenceMinComplexity  = ComplexityHigh
	lowConfidenceMinRoles       = 500
)

var complexityMultipliers = map[Complexity]float64{
	ComplexityVeryLow:  0.7,
	ComplexityLow:      0.85,
	ComplexityNormal:   1.0,
	ComplexityHigh:     1.25,
	ComplexityVeryHigh: 1.5,
}

// ComplexityMultiplier returns the effort scalar for c. Out of range levels
// map to zero.
func ComplexityMultiplier(c Complexity) float64 {
	return complexityMultipliers[c]
}

// Hours is the intermediate effort figure behind an estimate.
type Hours struct {
	Base     float64
	Adjusted float64
	AddOns   float64

	Implementation float64
	Enablement     float64
	Research       float64
	External       float64
}

// Total is the effort that drives the timeline.
func (h Hours) Total() float64 {
	return h.Adjusted + h.AddOns
}

// Effort splits the scope into role-based and add-on hours per pool.
func Effort(in Inputs, a Assumptions) Hours {
	h := Hours{}
	h.Base = float64(in.RolesToMap) * a.HoursPerRole * ComplexityMultiplier(in.Complexity)
	h.Adjusted = h.Base / a.ProductivityFactor
	for _, addOn := range in.AddOns {
		if addOn.Enabled {
			h.AddOns += addOn.Hours
		}
	}
	h.Implementation = h.Adjusted * implementationShare
	// Conversions keep each product rounded on its own (no fused multiply-add).
	h.Enablement = float64(h.Adjusted*enablementShare) + float64(h.AddOns*addOnEnablementShare)
	h.Research = h.Adjusted * researchShare
	h.External = float64(h.Adjusted*externalShare) + float64(h.AddOns*addOnExternalShare)
	return h
}

// Compute derives the full estimate.
func Compute(in Inputs, a Assumptions) Results {
	h := Effort(in, a)

	breakdown := Breakdown{
		Implementation: poolCost(h.Implementation, a.ImplementationRate),
		Enablement:     poolCost(h.Enablement, a.EnablementRate),
		Research:       poolCost(h.Research, a.ResearchRate),
		External:       poolCost(h.External, a.ExternalRate),
	}
	// Pools are rounded before the FX scaling and the scaled sum is rounded again.
	total := roundWhole(float64(float64(breakdown.Sum()) * a.FXRate))

	weeks := Weeks(in, a, h.Total())
	return Results{
		TotalCost:       total,
		TotalWeeks:      weeks,
		FTEEquivalent:   fteEquivalent(h.Total(), weeks),
		ConfidenceLevel: Classify(in.Complexity, in.RolesToMap),
		Breakdown:       breakdown,
	}
}

// Weeks converts effort hours into a calendar timeline.
func Weeks(in Inputs, a Assumptions, totalHours float64) int {
	hoursPerWeek := float64(a.WorkingDaysPerWeek * hoursPerWorkingDay)
	modeFactor := 1.0
	if in.ExecutionMode == ExecutionParallel {
		modeFactor = parallelFactor
	}
	cohortFactor := 1.0
	if in.CohortCount > 1 {
		if in.ExecutionMode == ExecutionParallel {
			cohortFactor = parallelCohortFactor
		} else {
			cohortFactor = float64(in.CohortCount) * sequentialCohortScale
		}
	}
	weeks := math.Ceil(totalHours / hoursPerWeek * modeFactor * cohortFactor)
	if !finite(weeks) || weeks < 0 {
		return 0
	}
	return int(weeks)
}

// Classify rates estimate reliability. The high rule is evaluated first.
func Classify(c Complexity, rolesToMap int) Confidence {
	switch {
	case c <= highConfidenceMaxComplexity && rolesToMap <= highConfidenceMaxRoles:
		return ConfidenceHigh
	case c >= lowConfidenceMinComplexity || rolesToMap > lowConfidenceMinRoles:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// poolCost rounds the float product half away from zero. NewFromFloat keeps
// the shortest decimal form of the product, so an exact .5 stays a tie.
func poolCost(hours, rate float64) int64 {
	return roundWhole(float64(hours * rate))
}

func roundWhole(v float64) int64 {
	if !finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

func fteEquivalent(totalHours float64, weeks int) float64 {
	if weeks == 0 {
		return 0
	}
	fte := totalHours / float64(hoursPerFTEWeek*weeks)
	if !finite(fte) {
		return 0
	}
	return decimal.NewFromFloat(fte).Round(1).InexactFloat64()
}

// decimal panics on NaN and ±Inf.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
