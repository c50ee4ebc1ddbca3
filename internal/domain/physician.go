package domain

import "fmt"

// AllowedWorkingWeeks enumerates the desired-working-weeks fractions a
// physician may declare.
var AllowedWorkingWeeks = map[float64]bool{0: true, 0.25: true, 0.5: true, 0.75: true, 1: true}

// Physician is a clinician available for scheduling. Initials are assigned by
// the PhysicianRegistry at insertion time, not by the caller.
type Physician struct {
	FirstName               string
	LastName                string
	Initials                string
	PreferredTasks          []string // ordered, at most 3
	RestrictedTasks         []string
	ExclusionTasks          []string
	DiscontinuityPreference bool
	DesiredWorkingWeeks     float64
}

// Name is the physician's identity key, "First Last".
func (p Physician) Name() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// NewPhysician constructs a Physician, truncating PreferredTasks to at most
// 3 entries.
func NewPhysician(firstName, lastName string, preferredTasks []string, discontinuityPreference bool,
	desiredWorkingWeeks float64, restrictedTasks, exclusionTasks []string) Physician {
	if len(preferredTasks) > 3 {
		preferredTasks = preferredTasks[:3]
	}
	return Physician{
		FirstName:               firstName,
		LastName:                lastName,
		PreferredTasks:          preferredTasks,
		DiscontinuityPreference: discontinuityPreference,
		DesiredWorkingWeeks:     desiredWorkingWeeks,
		RestrictedTasks:         restrictedTasks,
		ExclusionTasks:          exclusionTasks,
	}
}

// Prefers reports whether taskName is one of the physician's preferred tasks.
func (p Physician) Prefers(taskName string) bool {
	for _, t := range p.PreferredTasks {
		if t == taskName {
			return true
		}
	}
	return false
}

// IsRestrictedOrExcluded reports whether the physician cannot take taskName.
func (p Physician) IsRestrictedOrExcluded(taskName string) bool {
	for _, t := range p.RestrictedTasks {
		if t == taskName {
			return true
		}
	}
	for _, t := range p.ExclusionTasks {
		if t == taskName {
			return true
		}
	}
	return false
}
