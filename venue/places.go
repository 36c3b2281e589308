package venue

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	places "google.golang.org/api/places/v1"

	"github.com/planmesh/planmesh/core"
)

// searchFieldMask lists the place fields the adapter reads; the Places API
// rejects text-search requests without an explicit mask.
const searchFieldMask = "places.displayName,places.formattedAddress,places.rating,places.types"

// PlacesSearcher adapts the Google Places text-search API to the
// venue-search collaborator contract.
type PlacesSearcher struct {
	svc *places.Service
}

// NewPlacesSearcher wraps an authenticated Places service. Credential setup
// is the caller's concern.
func NewPlacesSearcher(svc *places.Service) *PlacesSearcher {
	return &PlacesSearcher{svc: svc}
}

// SearchVenues issues a text search query of the form
// "<cuisine> restaurants in <location>" and normalizes the ranked results.
func (s *PlacesSearcher) SearchVenues(ctx context.Context, cuisine, location string, limit int) ([]core.VenueCandidate, error) {
	req := &places.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:    fmt.Sprintf("%s restaurants in %s", cuisine, location),
		IncludedType: "restaurant",
	}
	call := s.svc.Places.SearchText(req).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", searchFieldMask)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("places text search: %w", err)
	}

	out := make([]core.VenueCandidate, 0, len(resp.Places))
	for _, p := range resp.Places {
		if limit > 0 && len(out) >= limit {
			break
		}
		v := core.VenueCandidate{
			Address: p.FormattedAddress,
			Rating:  p.Rating,
			Cuisine: cuisineTags(p.Types, cuisine),
		}
		if p.DisplayName != nil {
			v.Name = p.DisplayName.Text
		}
		if v.Name == "" {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// cuisineTags turns API type identifiers ("italian_restaurant") into display
// tags, falling back to the queried cuisine when the API reports none.
func cuisineTags(types []string, queried string) []string {
	var tags []string
	for _, t := range types {
		if t == "restaurant" || t == "food" || t == "point_of_interest" || t == "establishment" {
			continue
		}
		t = strings.TrimSuffix(t, "_restaurant")
		t = strings.ReplaceAll(t, "_", " ")
		tags = append(tags, titleTag(t))
	}
	if len(tags) == 0 && queried != "" {
		tags = []string{queried}
	}
	return tags
}

// titleTag uppercases the first letter of each word in a display tag.
func titleTag(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
