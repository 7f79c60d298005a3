package models

// Resource is a shareable asset the reply generator may attach. Resources are
// managed externally; the pipeline only reads them and bumps TimesShared.
type Resource struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Link         string       `json:"link"`
	Description  string       `json:"description"`
	PainTypes    []IntentType `json:"pain_types"`
	MinReadiness int          `json:"min_readiness"`
	Active       bool         `json:"active"`
	TimesShared  int          `json:"times_shared"`
}

// Applicable reports whether the resource addresses the given pain type at
// the given readiness level.
func (r *Resource) Applicable(pain IntentType, readiness int) bool {
	if !r.Active || readiness < r.MinReadiness {
		return false
	}
	for _, p := range r.PainTypes {
		if p == pain {
			return true
		}
	}
	return false
}
