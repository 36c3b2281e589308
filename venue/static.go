// Package venue provides venue-search collaborator implementations: a static
// in-memory searcher for tests and offline demos, and a Google Places
// text-search adapter.
package venue

import (
	"context"
	"strings"

	"github.com/planmesh/planmesh/core"
)

// StaticSearcher serves a fixed candidate list filtered by cuisine and
// location substrings. Rank order is the fixture order.
type StaticSearcher struct {
	venues []core.VenueCandidate
}

// NewStaticSearcher constructs a searcher over the given fixtures.
func NewStaticSearcher(venues []core.VenueCandidate) *StaticSearcher {
	return &StaticSearcher{venues: append([]core.VenueCandidate(nil), venues...)}
}

// DefaultFixtures returns the simulated venue data used when no real search
// backend is configured.
func DefaultFixtures() []core.VenueCandidate {
	return []core.VenueCandidate{
		{Name: "Trattoria Lucia", Address: "12 Harbor St, Downtown", Rating: 4.5, Cuisine: []string{"Italian"}},
		{Name: "Momo House", Address: "88 Hill Rd, Midtown", Rating: 4.2, Cuisine: []string{"Tibetan", "Asian"}},
		{Name: "The Brass Spoon", Address: "5 Market Sq, Downtown", Rating: 4.1, Cuisine: []string{"Indian"}},
		{Name: "Casa Verde", Address: "240 Elm Ave, Riverside", Rating: 4.0, Cuisine: []string{"Mexican"}},
		{Name: "Blue Fin", Address: "7 Pier Walk, Harborfront", Rating: 4.6, Cuisine: []string{"Japanese", "Sushi"}},
	}
}

// SearchVenues implements the venue-search collaborator contract. Matching is
// a case-insensitive substring test on cuisine tags and address; an empty
// criterion matches everything.
func (s *StaticSearcher) SearchVenues(ctx context.Context, cuisine, location string, limit int) ([]core.VenueCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cuisine = strings.ToLower(strings.TrimSpace(cuisine))
	location = strings.ToLower(strings.TrimSpace(location))

	var out []core.VenueCandidate
	for _, v := range s.venues {
		if limit > 0 && len(out) >= limit {
			break
		}
		if cuisine != "" && !matchesCuisine(v, cuisine) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(v.Address), location) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func matchesCuisine(v core.VenueCandidate, cuisine string) bool {
	if strings.Contains(strings.ToLower(v.Name), cuisine) {
		return true
	}
	for _, tag := range v.Cuisine {
		if strings.Contains(strings.ToLower(tag), cuisine) {
			return true
		}
	}
	return false
}
