package calculator

import "github.com/kingrea/swp-planner/internal/estimate"

// Scenario is a saved set of inputs and assumptions, as read from a scenario
// file or an HTTP request body.
type Scenario struct {
	Mode        Mode                 `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Inputs      estimate.Inputs      `json:"inputs" yaml:"inputs" toml:"inputs"`
	Assumptions estimate.Assumptions `json:"assumptions" yaml:"assumptions" toml:"assumptions"`
}

// DefaultScenario is the state of a fresh session. Decoders overlay parsed
// documents onto it so omitted fields keep their defaults.
func DefaultScenario() Scenario {
	return Scenario{
		Mode:        ModeQuick,
		Inputs:      estimate.DefaultInputs(),
		Assumptions: estimate.DefaultAssumptions(),
	}
}

// Apply replays a scenario through the session's update operations so every
// clamp and fallback applies. Add-ons are matched against the fixed catalog by
// id; unknown ids are ignored.
func (s *Session) Apply(sc Scenario) {
	if sc.Mode != "" {
		s.SetMode(sc.Mode)
	}
	in := sc.Inputs
	s.SetClientName(in.ClientName)
	s.SetRolesToMap(in.RolesToMap)
	s.SetJobFamilies(in.JobFamilies)
	s.SetComplexity(in.Complexity)
	s.SetTargetDate(in.TargetDate)
	s.SetExecutionMode(in.ExecutionMode)

	for _, addOn := range in.AddOns {
		i := s.addOnIndex(addOn.ID)
		if i < 0 {
			continue
		}
		if s.inputs.AddOns[i].Enabled != addOn.Enabled {
			s.ToggleAddOn(addOn.ID)
		}
		s.UpdateAddOnHours(addOn.ID, addOn.Hours)
	}

	count := in.CohortCount
	if count <= 0 {
		count = len(in.Cohorts)
	}
	s.SetCohortCount(count)
	explicitShares := false
	for _, c := range in.Cohorts {
		if c.RolesShare != 0 {
			explicitShares = true
			break
		}
	}
	for i, c := range in.Cohorts {
		if i >= s.inputs.CohortCount {
			break
		}
		update := CohortUpdate{StartDate: &c.StartDate}
		if c.Name != "" {
			update.Name = &c.Name
		}
		if explicitShares {
			update.RolesShare = &c.RolesShare
		}
		s.UpdateCohort(estimate.CohortID(i), update)
	}

	s.assumptions = sanitizeAssumptions(sc.Assumptions)
}

// Estimate runs a scenario through a fresh session and returns its snapshot.
func Estimate(sc Scenario) Snapshot {
	s := NewSession()
	s.Apply(sc)
	return s.Snapshot()
}
