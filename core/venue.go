package core

import "strings"

// VenueCandidate is one ranked result from the venue-search collaborator.
// Rating is 0 when the backend reported none.
type VenueCandidate struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Rating  float64  `json:"rating,omitempty"`
	Cuisine []string `json:"cuisine,omitempty"`
}

// Identity returns the (name, address) identity key used for de-duplication
// and for the per-session rejected-pair bookkeeping.
func (v VenueCandidate) Identity() string {
	return strings.ToLower(strings.TrimSpace(v.Name)) + "|" + strings.ToLower(strings.TrimSpace(v.Address))
}

// DedupeVenues removes candidates sharing an identity while preserving the
// backend's rank order.
func DedupeVenues(in []VenueCandidate) []VenueCandidate {
	seen := make(map[string]bool, len(in))
	out := make([]VenueCandidate, 0, len(in))
	for _, v := range in {
		id := v.Identity()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, v)
	}
	return out
}
